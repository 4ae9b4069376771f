package body

import (
	"encoding/binary"
	"fmt"
)

// TallyEntry is one candidate's vote count in an ordered tally. Order on the
// wire is descending-votes order as produced by the tally engine; a map
// would lose it.
type TallyEntry struct {
	Hash  [32]byte
	Votes uint16
}

// PluralityTally is the packed result of a plurality/MNTV election.
type PluralityTally struct {
	CollectionRef  [32]byte
	MeetsQuorum    bool
	Ties           uint8
	ValidBallots   uint16
	InvalidBallots uint16
	ValidVotes     uint16
	InvalidVotes   uint16
	Winners        [][32]byte
	Tally          []TallyEntry
}

func (t *PluralityTally) Tag() byte { return TagTallyOfVotes }

func (t *PluralityTally) Pack() ([]byte, error) {
	if len(t.Winners) > 255 {
		return nil, fmt.Errorf("plurality tally cannot carry %d winners", len(t.Winners))
	}
	out := []byte{TagTallyOfVotes, TagProposalPlurality}
	out = append(out, t.CollectionRef[:]...)
	out = append(out, boolByte(t.MeetsQuorum), t.Ties)
	out = binary.BigEndian.AppendUint16(out, t.ValidBallots)
	out = binary.BigEndian.AppendUint16(out, t.InvalidBallots)
	out = binary.BigEndian.AppendUint16(out, t.ValidVotes)
	out = binary.BigEndian.AppendUint16(out, t.InvalidVotes)
	out = append(out, byte(len(t.Winners)))
	for _, w := range t.Winners {
		out = append(out, w[:]...)
	}
	out = binary.BigEndian.AppendUint16(out, uint16(len(t.Tally)))
	for _, e := range t.Tally {
		out = append(out, e.Hash[:]...)
		out = binary.BigEndian.AppendUint16(out, e.Votes)
	}
	return out, nil
}

// RankedTally is the packed result of an IRV or IRV-Coombs election. Method
// distinguishes the two; the frame is shared. For Coombs the rounds carry
// the highest-preference counts (the recorded lowest-preference counts stay
// in the engine result and are not framed).
type RankedTally struct {
	Method           byte
	CollectionRef    [32]byte
	MeetsQuorum      bool
	ValidBallots     uint16
	InvalidBallots   uint16
	ExhaustedBallots uint16
	Winner           [32]byte
	Rounds           [][]TallyEntry
}

func (t *RankedTally) Tag() byte { return TagTallyOfVotes }

func (t *RankedTally) Pack() ([]byte, error) {
	if t.Method != TagProposalIRV && t.Method != TagProposalIRVCoombs {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedMethod, t.Method)
	}
	if len(t.Rounds) > 255 {
		return nil, fmt.Errorf("ranked tally cannot carry %d rounds", len(t.Rounds))
	}
	out := []byte{TagTallyOfVotes, t.Method}
	out = append(out, t.CollectionRef[:]...)
	out = append(out, boolByte(t.MeetsQuorum))
	out = binary.BigEndian.AppendUint16(out, t.ValidBallots)
	out = binary.BigEndian.AppendUint16(out, t.InvalidBallots)
	out = binary.BigEndian.AppendUint16(out, t.ExhaustedBallots)
	out = append(out, t.Winner[:]...)
	out = append(out, byte(len(t.Rounds)))
	for _, round := range t.Rounds {
		out = binary.BigEndian.AppendUint16(out, uint16(len(round)))
		for _, e := range round {
			out = append(out, e.Hash[:]...)
			out = binary.BigEndian.AppendUint16(out, e.Votes)
		}
	}
	return out, nil
}

// unpackTally dispatches on the method tag that follows TALLY_OF_VOTES.
func unpackTally(raw []byte) (Action, error) {
	if err := need(raw, 1, "tally method tag"); err != nil {
		return nil, err
	}
	method, rest := raw[0], raw[1:]
	switch method {
	case TagProposalPlurality:
		return unpackPluralityTally(rest)
	case TagProposalIRV, TagProposalIRVCoombs:
		return unpackRankedTally(method, rest)
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedMethod, method)
}

func unpackPluralityTally(raw []byte) (*PluralityTally, error) {
	if err := need(raw, 32+1+1+8+1, "plurality tally header"); err != nil {
		return nil, err
	}
	t := &PluralityTally{}
	copy(t.CollectionRef[:], raw[0:32])
	t.MeetsQuorum = raw[32] == 0x01
	t.Ties = raw[33]
	t.ValidBallots = binary.BigEndian.Uint16(raw[34:36])
	t.InvalidBallots = binary.BigEndian.Uint16(raw[36:38])
	t.ValidVotes = binary.BigEndian.Uint16(raw[38:40])
	t.InvalidVotes = binary.BigEndian.Uint16(raw[40:42])

	nWinners := int(raw[42])
	offset := 43
	if err := need(raw, offset+nWinners*32, "plurality tally winners"); err != nil {
		return nil, err
	}
	for i := 0; i < nWinners; i++ {
		var w [32]byte
		copy(w[:], raw[offset:offset+32])
		t.Winners = append(t.Winners, w)
		offset += 32
	}

	if err := need(raw, offset+2, "plurality tally count"); err != nil {
		return nil, err
	}
	nCandidates := int(binary.BigEndian.Uint16(raw[offset : offset+2]))
	offset += 2
	if err := need(raw, offset+nCandidates*34, "plurality tally entries"); err != nil {
		return nil, err
	}
	for i := 0; i < nCandidates; i++ {
		var e TallyEntry
		copy(e.Hash[:], raw[offset:offset+32])
		e.Votes = binary.BigEndian.Uint16(raw[offset+32 : offset+34])
		t.Tally = append(t.Tally, e)
		offset += 34
	}
	if offset != len(raw) {
		return nil, ErrTrailingBytes
	}
	return t, nil
}

func unpackRankedTally(method byte, raw []byte) (*RankedTally, error) {
	if err := need(raw, 32+1+6+32+1, "ranked tally header"); err != nil {
		return nil, err
	}
	t := &RankedTally{Method: method}
	copy(t.CollectionRef[:], raw[0:32])
	t.MeetsQuorum = raw[32] == 0x01
	t.ValidBallots = binary.BigEndian.Uint16(raw[33:35])
	t.InvalidBallots = binary.BigEndian.Uint16(raw[35:37])
	t.ExhaustedBallots = binary.BigEndian.Uint16(raw[37:39])
	copy(t.Winner[:], raw[39:71])

	nRounds := int(raw[71])
	offset := 72
	for r := 0; r < nRounds; r++ {
		if err := need(raw, offset+2, "tally round count"); err != nil {
			return nil, err
		}
		nCandidates := int(binary.BigEndian.Uint16(raw[offset : offset+2]))
		offset += 2
		if err := need(raw, offset+nCandidates*34, "tally round entries"); err != nil {
			return nil, err
		}
		round := make([]TallyEntry, 0, nCandidates)
		for c := 0; c < nCandidates; c++ {
			var e TallyEntry
			copy(e.Hash[:], raw[offset:offset+32])
			e.Votes = binary.BigEndian.Uint16(raw[offset+32 : offset+34])
			round = append(round, e)
			offset += 34
		}
		t.Rounds = append(t.Rounds, round)
	}
	if offset != len(raw) {
		return nil, ErrTrailingBytes
	}
	return t, nil
}

// NewAlgTally supersedes an inconclusive tally with a new election method,
// named by a 10-byte ASCII descriptor.
type NewAlgTally struct {
	Descriptor [10]byte
	TallyRef   [32]byte
}

func (t *NewAlgTally) Tag() byte { return TagTallyNewAlg }

func (t *NewAlgTally) Pack() ([]byte, error) {
	out := []byte{TagTallyNewAlg}
	out = append(out, t.Descriptor[:]...)
	out = append(out, t.TallyRef[:]...)
	return out, nil
}

// SetDescriptor stores a method name, space-padded to 10 bytes.
func (t *NewAlgTally) SetDescriptor(name string) error {
	if len(name) > len(t.Descriptor) {
		return ErrDescriptorLength
	}
	copy(t.Descriptor[:], "          ")
	copy(t.Descriptor[:], name)
	return nil
}

func unpackNewAlgTally(raw []byte) (*NewAlgTally, error) {
	if len(raw) != 42 {
		return nil, fmt.Errorf("%w: new-algorithm tally is exactly 42 bytes, have %d", ErrTruncated, len(raw))
	}
	t := &NewAlgTally{}
	copy(t.Descriptor[:], raw[0:10])
	copy(t.TallyRef[:], raw[10:42])
	return t, nil
}

func boolByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
