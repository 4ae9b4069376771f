package tally

// DefaultPlaceholder is the token a voter may place on a ranked ballot to
// position every candidate they did not rank. Normalization replaces it with
// a tied rank group of those candidates.
const DefaultPlaceholder = Candidate("Unranked/Write-Ins/Other")

// NormalizeRankedBallots canonicalizes ranked ballots for the round-based
// algorithms. Deterministically:
//
//  1. every candidate appearing on a ballot but missing from the candidate
//     list is appended to the list as a write-in, in first-seen order;
//  2. a ballot without the placeholder has it appended as its final rank;
//  3. each ballot's placeholder is replaced by one rank group tying every
//     candidate the ballot does not rank — or removed outright when the
//     ballot already ranks everyone, which also makes normalization
//     idempotent.
//
// Inputs are not modified; an empty placeholder selects the default token.
func NormalizeRankedBallots(ballots []RankedBallot, candidates []Candidate, placeholder Candidate) ([]RankedBallot, []Candidate) {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	allCandidates := append([]Candidate(nil), candidates...)
	work := cloneBallots(ballots)

	// Collect write-ins and plant the placeholder.
	for i, ballot := range work {
		foundPlaceholder := false
		for _, rank := range ballot {
			for _, c := range rank {
				if c == placeholder {
					foundPlaceholder = true
				} else if !containsCandidate(allCandidates, c) {
					allCandidates = append(allCandidates, c)
				}
			}
		}
		if !foundPlaceholder {
			work[i] = append(ballot, Rank{placeholder})
		}
	}

	// Replace each placeholder with the ballot's unranked candidates as one
	// tied group.
	normalized := make([]RankedBallot, 0, len(work))
	for _, ballot := range work {
		unranked := make(Rank, 0)
		for _, c := range allCandidates {
			if !ballot.contains(c) {
				unranked = append(unranked, c)
			}
		}

		out := make(RankedBallot, 0, len(ballot))
		replaced := false
		for _, rank := range ballot {
			if !replaced && rankHolds(rank, placeholder) {
				replaced = true
				if len(unranked) > 0 {
					out = append(out, unranked)
				}
				continue
			}
			out = append(out, rank)
		}
		normalized = append(normalized, out)
	}
	return normalized, allCandidates
}

func rankHolds(rank Rank, c Candidate) bool {
	for _, have := range rank {
		if have == c {
			return true
		}
	}
	return false
}
