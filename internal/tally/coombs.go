package tally

import "math"

// CoombsRound records both tallies the Coombs rule needs each round: the
// first-preference counts that decide the winner and the last-preference
// counts that decide the elimination.
type CoombsRound struct {
	Highest []Count
	Lowest  []Count
}

// CoombsResult is the outcome of an IRV-Coombs count.
type CoombsResult struct {
	Rounds           []CoombsRound
	Winner           Candidate
	ValidBallots     int
	InvalidBallots   int
	ExhaustedBallots int
	MeetsQuorum      bool
}

// IRVCoombs runs Coombs-rule elimination: the winner still needs a majority
// of first-preference votes, but each round eliminates the candidate with
// the greatest last-preference count (all candidates tied at that maximum go
// together). A tied last rank contributes 1/len to each member, mirroring
// the first-rank rule. In round 0 a ballot is invalid unless it ranks every
// candidate, so normalize ballots first.
func IRVCoombs(candidates []Candidate, ballots []RankedBallot, quorum int) *CoombsResult {
	result := &CoombsResult{Winner: NoWinner}
	remaining := append([]Candidate(nil), candidates...)
	working := cloneBallots(ballots)
	totalBallots := len(ballots)

	for round := 0; ; round++ {
		highest := make(map[Candidate]float64, len(remaining))
		lowest := make(map[Candidate]float64, len(remaining))
		for _, c := range remaining {
			highest[c] = 0
			lowest[c] = 0
		}

		counted := make([]RankedBallot, 0, len(working))
		for _, ballot := range working {
			if round == 0 && rankEntries(ballot) < len(remaining) {
				result.InvalidBallots++
				continue
			}
			if len(ballot) == 0 || !ranksKnown(ballot[0], highest) || !ranksKnown(ballot[len(ballot)-1], highest) {
				result.InvalidBallots++
				continue
			}

			first := ballot[0]
			share := 1 / float64(len(first))
			for _, c := range first {
				highest[c] += share
			}
			last := ballot[len(ballot)-1]
			share = 1 / float64(len(last))
			for _, c := range last {
				lowest[c] += share
			}
			counted = append(counted, ballot)
		}

		roundRecord := CoombsRound{
			Highest: orderedCounts(remaining, highest),
			Lowest:  orderedCounts(remaining, lowest),
		}
		result.Rounds = append(result.Rounds, roundRecord)

		totalVotes := 0.0
		for _, entry := range roundRecord.Highest {
			totalVotes += entry.Votes
		}
		majority := math.Floor(totalVotes / 2)
		if len(roundRecord.Highest) > 0 && roundRecord.Highest[0].Votes > majority+voteEpsilon {
			result.Winner = roundRecord.Highest[0].Candidate
			break
		}

		eliminated := highestLastPreference(roundRecord.Lowest)
		remaining = removeCandidates(remaining, eliminated)
		if len(remaining) == 0 {
			break
		}

		working = nil
		for _, ballot := range counted {
			rebuilt := ballot.dropCandidates(eliminated)
			if len(rebuilt) == 0 {
				result.ExhaustedBallots++
				continue
			}
			working = append(working, rebuilt)
		}
	}

	result.ValidBallots = totalBallots - result.InvalidBallots
	result.MeetsQuorum = result.ValidBallots-result.ExhaustedBallots > quorum
	return result
}

// rankEntries counts how many candidates a ballot ranks across all groups.
func rankEntries(ballot RankedBallot) int {
	entries := 0
	for _, rank := range ballot {
		entries += len(rank)
	}
	return entries
}

func ranksKnown(rank Rank, known map[Candidate]float64) bool {
	for _, c := range rank {
		if _, ok := known[c]; !ok {
			return false
		}
	}
	return true
}

func orderedCounts(order []Candidate, votes map[Candidate]float64) []Count {
	out := make([]Count, 0, len(order))
	for _, c := range order {
		out = append(out, Count{Candidate: c, Votes: votes[c]})
	}
	sortCounts(out)
	return out
}

// highestLastPreference returns every candidate tied at the maximum
// last-preference count.
func highestLastPreference(lowest []Count) map[Candidate]bool {
	gone := make(map[Candidate]bool)
	if len(lowest) == 0 {
		return gone
	}
	maximum := lowest[0].Votes
	for _, entry := range lowest {
		if votesEqual(entry.Votes, maximum) {
			gone[entry.Candidate] = true
		}
	}
	return gone
}
