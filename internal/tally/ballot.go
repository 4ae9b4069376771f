// Package tally implements the deterministic election algorithms: ballot
// normalization, plurality/MNTV, IRV (Hare), IRV-Coombs, and STV with the
// Droop quota. Candidate identity is byte equality; in the ledger flow the
// bytes are 32-byte candidate hashes, but the algorithms accept any byte
// string so write-ins and test fixtures work unchanged.
package tally

import "sort"

// Candidate is a candidate identifier, compared by exact bytes.
type Candidate string

// Rank is one preference level of a ranked ballot. More than one member
// means the voter tied those candidates; each receives 1/len of the vote.
type Rank []Candidate

// RankedBallot is an ordered list of ranks, most preferred first.
type RankedBallot []Rank

// Ranked builds a ballot of single-member ranks from an ordered preference
// list.
func Ranked(prefs ...Candidate) RankedBallot {
	ballot := make(RankedBallot, len(prefs))
	for i, c := range prefs {
		ballot[i] = Rank{c}
	}
	return ballot
}

// Count pairs a candidate with its (possibly fractional) vote total. Tallies
// are ordered lists, descending by votes, stable in candidate order for
// equal totals; a map would lose the order the codec frames.
type Count struct {
	Candidate Candidate
	Votes     float64
}

// voteEpsilon bounds float drift from fractional rank-group contributions
// when counts are compared for ties, majorities, and quota.
const voteEpsilon = 1e-9

func votesEqual(a, b float64) bool {
	diff := a - b
	return diff < voteEpsilon && diff > -voteEpsilon
}

// sortCounts orders entries by descending votes, keeping the insertion
// (candidate-list) order for equal totals.
func sortCounts(entries []Count) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Votes > entries[j].Votes
	})
}

func (b RankedBallot) clone() RankedBallot {
	out := make(RankedBallot, len(b))
	for i, rank := range b {
		out[i] = append(Rank(nil), rank...)
	}
	return out
}

func cloneBallots(ballots []RankedBallot) []RankedBallot {
	out := make([]RankedBallot, len(ballots))
	for i, b := range ballots {
		out[i] = b.clone()
	}
	return out
}

func containsCandidate(list []Candidate, c Candidate) bool {
	for _, have := range list {
		if have == c {
			return true
		}
	}
	return false
}

// contains reports whether the ballot ranks c at any level.
func (b RankedBallot) contains(c Candidate) bool {
	for _, rank := range b {
		for _, have := range rank {
			if have == c {
				return true
			}
		}
	}
	return false
}

// dropCandidates removes the named candidates from every rank, collapsing
// ranks that empty out. The receiver is not modified.
func (b RankedBallot) dropCandidates(gone map[Candidate]bool) RankedBallot {
	out := make(RankedBallot, 0, len(b))
	for _, rank := range b {
		kept := make(Rank, 0, len(rank))
		for _, c := range rank {
			if !gone[c] {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}
