package body

import (
	"fmt"
)

// Ballot is a cast vote referencing a proposal block. For plurality,
// approval, and MMP ballots Candidates is an unordered set of candidate
// hashes; for ranked ballots the order encodes preference, most preferred
// first. Score ballots carry a parallel Scores slice, one byte per
// candidate.
type Ballot struct {
	Method      byte
	ProposalRef [32]byte
	Candidates  [][32]byte
	Scores      []uint8
}

func (b *Ballot) Tag() byte { return b.Method }

func (b *Ballot) Pack() ([]byte, error) {
	if !IsBallotTag(b.Method) {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, b.Method)
	}
	scored := b.Method == TagBallotScore
	if scored && len(b.Scores) != len(b.Candidates) {
		return nil, fmt.Errorf("score ballot needs one score per candidate: %d candidates, %d scores", len(b.Candidates), len(b.Scores))
	}
	if !scored && len(b.Scores) != 0 {
		return nil, fmt.Errorf("%s ballot cannot carry scores", TagName(b.Method))
	}

	out := []byte{b.Method}
	out = append(out, b.ProposalRef[:]...)
	for i, hash := range b.Candidates {
		out = append(out, hash[:]...)
		if scored {
			out = append(out, b.Scores[i])
		}
	}
	return out, nil
}

func unpackBallot(method byte, raw []byte) (*Ballot, error) {
	if err := need(raw, 32, "ballot proposal reference"); err != nil {
		return nil, err
	}
	b := &Ballot{Method: method}
	copy(b.ProposalRef[:], raw[0:32])
	rest := raw[32:]

	stride := 32
	scored := method == TagBallotScore
	if scored {
		stride = 33
	}
	if len(rest)%stride != 0 {
		return nil, fmt.Errorf("%w: ballot entries must be %d bytes each", ErrBadHashLength, stride)
	}
	for offset := 0; offset < len(rest); offset += stride {
		var hash [32]byte
		copy(hash[:], rest[offset:offset+32])
		b.Candidates = append(b.Candidates, hash)
		if scored {
			b.Scores = append(b.Scores, rest[offset+32])
		}
	}
	return b, nil
}
