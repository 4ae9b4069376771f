package tally

import "math"

// NoWinner is the 32-zero-byte sentinel a round-based tally returns when
// every candidate was eliminated without a majority.
var NoWinner = Candidate(string(make([]byte, 32)))

// IRVResult is the outcome of an instant-runoff count. Rounds holds the
// first-preference tally of each elimination round in descending-votes
// order.
type IRVResult struct {
	Rounds           [][]Count
	Winner           Candidate
	ValidBallots     int
	InvalidBallots   int
	ExhaustedBallots int
	MeetsQuorum      bool
}

// IRV runs instant-runoff (Hare) elimination rounds until a candidate holds
// a majority of the round's first-preference votes. A tied first rank
// contributes 1/len to each member. Each round eliminates every candidate
// tied at the minimum; eliminated candidates are struck from all ballots and
// a ballot with nothing left is exhausted. An empty or unrecognized first
// rank invalidates a ballot in round 0 and exhausts it in later rounds.
func IRV(candidates []Candidate, ballots []RankedBallot, quorum int) *IRVResult {
	result := &IRVResult{Winner: NoWinner}
	remaining := append([]Candidate(nil), candidates...)
	working := cloneBallots(ballots)
	totalBallots := len(ballots)

	for round := 0; ; round++ {
		roundTally, counted, invalid := countFirstPreferences(remaining, working)
		if round == 0 {
			result.InvalidBallots += invalid
		} else {
			result.ExhaustedBallots += invalid
		}
		result.Rounds = append(result.Rounds, roundTally)

		totalVotes := 0.0
		for _, entry := range roundTally {
			totalVotes += entry.Votes
		}
		majority := math.Floor(totalVotes / 2)

		if len(roundTally) > 0 && roundTally[0].Votes > majority+voteEpsilon {
			result.Winner = roundTally[0].Candidate
			break
		}

		eliminated := lowestCandidates(roundTally)
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

// countFirstPreferences tallies the first rank of every ballot over the
// remaining candidates, returning the sorted tally, the ballots that
// counted, and how many were invalid (empty or carrying an unknown
// candidate in the first rank).
func countFirstPreferences(remaining []Candidate, ballots []RankedBallot) ([]Count, []RankedBallot, int) {
	votes := make(map[Candidate]float64, len(remaining))
	for _, c := range remaining {
		votes[c] = 0
	}

	counted := make([]RankedBallot, 0, len(ballots))
	invalid := 0
	for _, ballot := range ballots {
		if len(ballot) == 0 {
			invalid++
			continue
		}
		first := ballot[0]
		known := true
		for _, c := range first {
			if _, ok := votes[c]; !ok {
				known = false
				break
			}
		}
		if !known {
			invalid++
			continue
		}
		share := 1 / float64(len(first))
		for _, c := range first {
			votes[c] += share
		}
		counted = append(counted, ballot)
	}

	tally := make([]Count, 0, len(remaining))
	for _, c := range remaining {
		tally = append(tally, Count{Candidate: c, Votes: votes[c]})
	}
	sortCounts(tally)
	return tally, counted, invalid
}

// lowestCandidates returns every candidate tied at the round's minimum vote
// count.
func lowestCandidates(roundTally []Count) map[Candidate]bool {
	gone := make(map[Candidate]bool)
	if len(roundTally) == 0 {
		return gone
	}
	minimum := roundTally[len(roundTally)-1].Votes
	for _, entry := range roundTally {
		if votesEqual(entry.Votes, minimum) {
			gone[entry.Candidate] = true
		}
	}
	return gone
}

func removeCandidates(list []Candidate, gone map[Candidate]bool) []Candidate {
	kept := make([]Candidate, 0, len(list))
	for _, c := range list {
		if !gone[c] {
			kept = append(kept, c)
		}
	}
	return kept
}
