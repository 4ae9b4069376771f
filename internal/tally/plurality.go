package tally

// PluralityResult is the outcome of a first-past-the-post or
// multiple-non-transferable-vote count.
type PluralityResult struct {
	Tally          []Count
	Winners        []Candidate
	ValidBallots   int
	InvalidBallots int
	ValidVotes     int
	InvalidVotes   int
	Ties           int
	MeetsQuorum    bool
}

// Plurality tallies FPTP (one winner, one mark per ballot) and MNTV/bloc
// ballots (numberOfWinners > 1, up to that many marks per ballot). A mark
// for an unknown candidate is an invalid vote and invalidates its ballot,
// though the ballot's recognized marks still count. Winners are the top
// numberOfWinners by votes; while the last winner is tied with the first
// runner-up, the cut line cannot distinguish them, so the last winner is
// dropped and Ties incremented.
func Plurality(numberOfWinners int, candidates []Candidate, ballots [][]Candidate, quorum int) *PluralityResult {
	result := &PluralityResult{}
	votes := make(map[Candidate]int, len(candidates))
	for _, c := range candidates {
		votes[c] = 0
	}

	for _, ballot := range ballots {
		if numberOfWinners > 1 {
			if len(ballot) > numberOfWinners {
				result.InvalidBallots++
				continue
			}
			valid := true
			for _, mark := range ballot {
				if _, known := votes[mark]; known {
					votes[mark]++
					result.ValidVotes++
				} else {
					result.InvalidVotes++
					valid = false
				}
			}
			if valid {
				result.ValidBallots++
			} else {
				result.InvalidBallots++
			}
			continue
		}

		// FPTP: exactly one recognized mark.
		if len(ballot) == 1 {
			if _, known := votes[ballot[0]]; known {
				votes[ballot[0]]++
				result.ValidBallots++
				continue
			}
		}
		result.InvalidBallots++
	}

	result.Tally = make([]Count, 0, len(candidates))
	for _, c := range candidates {
		result.Tally = append(result.Tally, Count{Candidate: c, Votes: float64(votes[c])})
	}
	sortCounts(result.Tally)

	for i := 0; i < numberOfWinners && i < len(result.Tally); i++ {
		result.Winners = append(result.Winners, result.Tally[i].Candidate)
	}

	// Drop winners that are tied with the first candidate outside the cut
	// line; the count cannot order them.
	for len(result.Winners) > 0 && len(result.Winners) < len(result.Tally) {
		last := result.Tally[len(result.Winners)-1].Votes
		next := result.Tally[len(result.Winners)].Votes
		if !votesEqual(last, next) {
			break
		}
		result.Winners = result.Winners[:len(result.Winners)-1]
		result.Ties++
	}

	result.MeetsQuorum = result.ValidBallots >= quorum
	return result
}
