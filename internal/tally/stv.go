package tally

// STVResult is the outcome of a single-transferable-vote count.
type STVResult struct {
	Rounds           [][]Count
	Winners          []Candidate
	Quota            int
	ValidBallots     int
	InvalidBallots   int
	ExhaustedBallots int
	MeetsQuorum      bool
}

// weightedBallot carries the Gregory-method transfer weight alongside the
// ballot's remaining ranks.
type weightedBallot struct {
	ranks  RankedBallot
	weight float64
}

// STVDroop fills seats by single transferable vote with the Droop quota
// floor(ballots/(seats+1))+1. Each round counts weighted first preferences
// (a tied rank splits a ballot's weight evenly). Candidates at or above
// quota are seated in descending-votes order and their surplus transferred
// by the Gregory method: every ballot whose first rank holds the seated
// candidate is rescaled by (count−quota)/count — for a tied first rank of n
// members, by (ratio+n−1)/n — before the candidate is struck from all
// ballots. When nobody reaches quota the minimum-count candidates are
// eliminated together, as in IRV. Once only as many candidates remain as
// seats, they are all seated.
func STVDroop(candidates []Candidate, ballots []RankedBallot, seats, quorum int) *STVResult {
	result := &STVResult{
		Quota: len(ballots)/(seats+1) + 1,
	}
	remaining := append([]Candidate(nil), candidates...)
	totalBallots := len(ballots)
	quota := float64(result.Quota)

	working := make([]weightedBallot, 0, len(ballots))
	for _, ballot := range ballots {
		working = append(working, weightedBallot{ranks: ballot.clone(), weight: 1})
	}

	for round := 0; len(result.Winners) < seats && len(remaining) > 0; round++ {
		votes := make(map[Candidate]float64, len(remaining))
		for _, c := range remaining {
			votes[c] = 0
		}

		counted := make([]weightedBallot, 0, len(working))
		for _, wb := range working {
			if len(wb.ranks) == 0 {
				if round == 0 {
					result.InvalidBallots++
				} else {
					result.ExhaustedBallots++
				}
				continue
			}
			first := wb.ranks[0]
			known := true
			for _, c := range first {
				if _, ok := votes[c]; !ok {
					known = false
					break
				}
			}
			if !known {
				result.InvalidBallots++
				continue
			}
			share := wb.weight / float64(len(first))
			for _, c := range first {
				votes[c] += share
			}
			counted = append(counted, wb)
		}

		roundTally := make([]Count, 0, len(remaining))
		for _, c := range remaining {
			roundTally = append(roundTally, Count{Candidate: c, Votes: votes[c]})
		}
		sortCounts(roundTally)
		result.Rounds = append(result.Rounds, roundTally)

		// With no contest left, the remaining candidates take the remaining
		// seats in descending-votes order.
		if len(remaining) <= seats-len(result.Winners) {
			for _, entry := range roundTally {
				result.Winners = append(result.Winners, entry.Candidate)
			}
			break
		}

		elected := make([]Count, 0)
		for _, entry := range roundTally {
			if entry.Votes > quota-voteEpsilon {
				elected = append(elected, entry)
			}
		}

		gone := make(map[Candidate]bool)
		if len(elected) > 0 {
			for _, seat := range elected {
				if len(result.Winners) >= seats {
					break
				}
				result.Winners = append(result.Winners, seat.Candidate)
				gone[seat.Candidate] = true
				ratio := (seat.Votes - quota) / seat.Votes
				for i := range counted {
					first := counted[i].ranks[0]
					if !rankHolds(first, seat.Candidate) {
						continue
					}
					if n := float64(len(first)); n > 1 {
						counted[i].weight *= (ratio + n - 1) / n
					} else {
						counted[i].weight *= ratio
					}
				}
			}
		} else {
			gone = lowestCandidates(roundTally)
		}

		remaining = removeCandidates(remaining, gone)

		working = working[:0]
		for _, wb := range counted {
			rebuilt := wb.ranks.dropCandidates(gone)
			if len(rebuilt) == 0 {
				result.ExhaustedBallots++
				continue
			}
			working = append(working, weightedBallot{ranks: rebuilt, weight: wb.weight})
		}
	}

	result.ValidBallots = totalBallots - result.InvalidBallots
	result.MeetsQuorum = result.ValidBallots-result.ExhaustedBallots > quorum
	return result
}
