package body

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/votebadge/votebadge/internal/crypto"
)

// CandidateRecord is one nominated candidate: the SHA-256 of its data plus
// the data itself. The stored hash is redundant but canonical; it must match
// the data on unpack.
type CandidateRecord struct {
	Hash [32]byte
	Data []byte
}

// NewCandidate builds a candidate record from raw candidate data.
func NewCandidate(data []byte) CandidateRecord {
	var rec CandidateRecord
	copy(rec.Hash[:], crypto.Hash(data))
	rec.Data = cloneBytes(data)
	return rec
}

// Proposal opens an election. Method is the proposal control character and
// selects both the tally algorithm and whether Winners appears on the wire:
// single-winner methods drop the number_of_winners byte.
type Proposal struct {
	Method     byte
	StartTime  uint32
	EndTime    uint32
	Quorum     uint16
	Winners    uint8
	Intro      []byte
	Candidates []CandidateRecord
}

func (p *Proposal) Tag() byte { return p.Method }

// Pack serializes the proposal. Input-constraint violations surface as
// structured errors; they indicate caller bugs rather than adversarial
// input.
func (p *Proposal) Pack() ([]byte, error) {
	if !IsProposalTag(p.Method) {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, p.Method)
	}
	if len(p.Intro) > 65535 {
		return nil, ErrIntroTooLong
	}
	if len(p.Candidates) < 1 {
		return nil, ErrNoCandidates
	}
	if len(p.Candidates) > 255 {
		return nil, ErrTooManyCandidates
	}
	if !MethodElectsSingleWinner(p.Method) {
		if p.Winners < 1 || int(p.Winners) >= len(p.Candidates) {
			return nil, ErrWinnersRange
		}
	}
	seen := make(map[[32]byte]bool, len(p.Candidates))
	for i, c := range p.Candidates {
		if len(c.Data) > 65535 {
			return nil, fmt.Errorf("%w: candidate %d", ErrCandidateTooLong, i)
		}
		var want [32]byte
		copy(want[:], crypto.Hash(c.Data))
		if c.Hash != want {
			return nil, fmt.Errorf("%w: candidate %d", ErrHashMismatch, i)
		}
		if seen[c.Hash] {
			return nil, fmt.Errorf("%w: candidate %d", ErrDuplicateHash, i)
		}
		seen[c.Hash] = true
	}

	out := []byte{p.Method}
	out = binary.BigEndian.AppendUint32(out, p.StartTime)
	out = binary.BigEndian.AppendUint32(out, p.EndTime)
	out = binary.BigEndian.AppendUint16(out, p.Quorum)
	if !MethodElectsSingleWinner(p.Method) {
		out = append(out, p.Winners)
	}
	out = append(out, byte(len(p.Candidates)))
	out = binary.BigEndian.AppendUint16(out, uint16(len(p.Intro)))
	out = append(out, p.Intro...)
	for _, c := range p.Candidates {
		out = append(out, c.Hash[:]...)
		out = binary.BigEndian.AppendUint16(out, uint16(len(c.Data)))
		out = append(out, c.Data...)
	}
	return out, nil
}

func unpackProposal(method byte, raw []byte) (*Proposal, error) {
	fixed := 4 + 4 + 2 + 1 + 2 // start, end, quorum, n_candidates, intro length
	if !MethodElectsSingleWinner(method) {
		fixed++ // number_of_winners
	}
	if err := need(raw, fixed, "proposal header"); err != nil {
		return nil, err
	}

	p := &Proposal{Method: method}
	p.StartTime = binary.BigEndian.Uint32(raw[0:4])
	p.EndTime = binary.BigEndian.Uint32(raw[4:8])
	p.Quorum = binary.BigEndian.Uint16(raw[8:10])
	offset := 10
	if !MethodElectsSingleWinner(method) {
		p.Winners = raw[offset]
		offset++
	}
	count := int(raw[offset])
	offset++
	introLen := int(binary.BigEndian.Uint16(raw[offset : offset+2]))
	offset += 2
	if err := need(raw, offset+introLen, "proposal intro"); err != nil {
		return nil, err
	}
	p.Intro = cloneBytes(raw[offset : offset+introLen])
	offset += introLen

	seen := make(map[[32]byte]bool, count)
	for offset < len(raw) {
		if err := need(raw, offset+34, "candidate record"); err != nil {
			return nil, err
		}
		var rec CandidateRecord
		copy(rec.Hash[:], raw[offset:offset+32])
		offset += 32
		dataLen := int(binary.BigEndian.Uint16(raw[offset : offset+2]))
		offset += 2
		if err := need(raw, offset+dataLen, "candidate data"); err != nil {
			return nil, err
		}
		rec.Data = cloneBytes(raw[offset : offset+dataLen])
		offset += dataLen

		if !bytes.Equal(rec.Hash[:], crypto.Hash(rec.Data)) {
			return nil, fmt.Errorf("%w: candidate %d", ErrHashMismatch, len(p.Candidates))
		}
		if seen[rec.Hash] {
			return nil, fmt.Errorf("%w: candidate %d", ErrDuplicateHash, len(p.Candidates))
		}
		seen[rec.Hash] = true
		p.Candidates = append(p.Candidates, rec)
	}
	if len(p.Candidates) != count {
		return nil, fmt.Errorf("%w: header declares %d candidates, body holds %d", ErrTruncated, count, len(p.Candidates))
	}
	return p, nil
}

// CandidateHashes returns the 32-byte hash of every candidate, in proposal
// order.
func (p *Proposal) CandidateHashes() [][32]byte {
	hashes := make([][32]byte, len(p.Candidates))
	for i, c := range p.Candidates {
		hashes[i] = c.Hash
	}
	return hashes
}
