package body

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/votebadge/votebadge/internal/crypto"
)

// Nomination adds one candidate to an open proposal.
type Nomination struct {
	ProposalRef [32]byte
	Candidate   CandidateRecord
}

func (n *Nomination) Tag() byte { return TagNominate }

func (n *Nomination) Pack() ([]byte, error) {
	if len(n.Candidate.Data) > 65535 {
		return nil, ErrCandidateTooLong
	}
	if !bytes.Equal(n.Candidate.Hash[:], crypto.Hash(n.Candidate.Data)) {
		return nil, ErrHashMismatch
	}
	out := []byte{TagNominate}
	out = append(out, n.ProposalRef[:]...)
	out = append(out, n.Candidate.Hash[:]...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(n.Candidate.Data)))
	out = append(out, n.Candidate.Data...)
	return out, nil
}

func unpackNomination(raw []byte) (*Nomination, error) {
	if err := need(raw, 32+32+2, "nomination header"); err != nil {
		return nil, err
	}
	n := &Nomination{}
	copy(n.ProposalRef[:], raw[0:32])
	copy(n.Candidate.Hash[:], raw[32:64])
	dataLen := int(binary.BigEndian.Uint16(raw[64:66]))
	if len(raw) != 66+dataLen {
		return nil, fmt.Errorf("%w: nomination data", ErrTruncated)
	}
	n.Candidate.Data = cloneBytes(raw[66:])
	if !bytes.Equal(n.Candidate.Hash[:], crypto.Hash(n.Candidate.Data)) {
		return nil, ErrHashMismatch
	}
	return n, nil
}

// BallotCollection closes an election's ballot intake: the set of ballot
// block hashes counted by the tally that follows. Collections chain through
// PrevCollection (all zero for the first) when one block cannot hold every
// reference.
type BallotCollection struct {
	ProposalRef    [32]byte
	PrevCollection [32]byte
	Ballots        [][32]byte
}

func (c *BallotCollection) Tag() byte { return TagCollectBallots }

func (c *BallotCollection) Pack() ([]byte, error) {
	if len(c.Ballots) > 65535 {
		return nil, fmt.Errorf("ballot collection cannot carry %d references", len(c.Ballots))
	}
	out := []byte{TagCollectBallots}
	out = append(out, c.ProposalRef[:]...)
	out = append(out, c.PrevCollection[:]...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(c.Ballots)))
	for _, h := range c.Ballots {
		out = append(out, h[:]...)
	}
	return out, nil
}

func unpackBallotCollection(raw []byte) (*BallotCollection, error) {
	if err := need(raw, 32+32+2, "ballot collection header"); err != nil {
		return nil, err
	}
	c := &BallotCollection{}
	copy(c.ProposalRef[:], raw[0:32])
	copy(c.PrevCollection[:], raw[32:64])
	count := int(binary.BigEndian.Uint16(raw[64:66]))
	if len(raw) != 66+count*32 {
		return nil, fmt.Errorf("%w: ballot collection declares %d references", ErrTruncated, count)
	}
	offset := 66
	for i := 0; i < count; i++ {
		var h [32]byte
		copy(h[:], raw[offset:offset+32])
		c.Ballots = append(c.Ballots, h)
		offset += 32
	}
	return c, nil
}

// PartyDeclaration declares the signer's party affiliation. The first
// declaration for a party also fixes the election method its leadership
// contests use.
type PartyDeclaration struct {
	Method byte
	Name   []byte
}

func (d *PartyDeclaration) Tag() byte { return TagDeclareParty }

func (d *PartyDeclaration) Pack() ([]byte, error) {
	if !IsProposalTag(d.Method) {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, d.Method)
	}
	if len(d.Name) == 0 || len(d.Name) > 65535 {
		return nil, fmt.Errorf("party name must be 1..65535 bytes, have %d", len(d.Name))
	}
	out := []byte{TagDeclareParty, d.Method}
	out = binary.BigEndian.AppendUint16(out, uint16(len(d.Name)))
	out = append(out, d.Name...)
	return out, nil
}

func unpackPartyDeclaration(raw []byte) (*PartyDeclaration, error) {
	if err := need(raw, 3, "party declaration header"); err != nil {
		return nil, err
	}
	d := &PartyDeclaration{Method: raw[0]}
	if !IsProposalTag(d.Method) {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, d.Method)
	}
	nameLen := int(binary.BigEndian.Uint16(raw[1:3]))
	if len(raw) != 3+nameLen {
		return nil, fmt.Errorf("%w: party name", ErrTruncated)
	}
	d.Name = cloneBytes(raw[3:])
	return d, nil
}

// PartyMatter scopes another action to party business: the tag prefixes the
// nested action's full body. One level only.
type PartyMatter struct {
	Inner Action
}

func (p *PartyMatter) Tag() byte { return TagPartyMatter }

func (p *PartyMatter) Pack() ([]byte, error) {
	if _, nested := p.Inner.(*PartyMatter); nested {
		return nil, ErrNestedPartyMatter
	}
	inner, err := p.Inner.Pack()
	if err != nil {
		return nil, err
	}
	return append([]byte{TagPartyMatter}, inner...), nil
}

func unpackPartyMatter(raw []byte) (*PartyMatter, error) {
	if len(raw) > 0 && raw[0] == TagPartyMatter {
		return nil, ErrNestedPartyMatter
	}
	inner, err := Unpack(raw)
	if err != nil {
		return nil, err
	}
	return &PartyMatter{Inner: inner}, nil
}

// Message is a sealed-box payload addressed to another node. The ciphertext
// is opaque to the ledger; only the declaration format is specified.
type Message struct {
	Recipient  [32]byte
	Ciphertext []byte
}

func (m *Message) Tag() byte { return TagMessage }

func (m *Message) Pack() ([]byte, error) {
	out := []byte{TagMessage}
	out = append(out, m.Recipient[:]...)
	out = append(out, m.Ciphertext...)
	return out, nil
}

func unpackMessage(raw []byte) (*Message, error) {
	if err := need(raw, 32, "message recipient"); err != nil {
		return nil, err
	}
	m := &Message{}
	copy(m.Recipient[:], raw[0:32])
	m.Ciphertext = cloneBytes(raw[32:])
	return m, nil
}

// Broadcast is a public announcement on the signer's own chain.
type Broadcast struct {
	Payload []byte
}

func (b *Broadcast) Tag() byte { return TagBroadcast }

func (b *Broadcast) Pack() ([]byte, error) {
	return append([]byte{TagBroadcast}, b.Payload...), nil
}

// Reference points at a block on any chain, e.g. for public comment.
type Reference struct {
	ChainAddress [32]byte
	BlockHash    [32]byte
	Comment      []byte
}

func (r *Reference) Tag() byte { return TagReference }

func (r *Reference) Pack() ([]byte, error) {
	out := []byte{TagReference}
	out = append(out, r.ChainAddress[:]...)
	out = append(out, r.BlockHash[:]...)
	out = append(out, r.Comment...)
	return out, nil
}

func unpackReference(raw []byte) (*Reference, error) {
	if err := need(raw, 64, "reference header"); err != nil {
		return nil, err
	}
	r := &Reference{}
	copy(r.ChainAddress[:], raw[0:32])
	copy(r.BlockHash[:], raw[32:64])
	r.Comment = cloneBytes(raw[64:])
	return r, nil
}

// Respects replies to a tally whose quorum failed.
type Respects struct {
	TallyRef [32]byte
}

func (r *Respects) Tag() byte { return TagPayRespects }

func (r *Respects) Pack() ([]byte, error) {
	out := []byte{TagPayRespects}
	out = append(out, r.TallyRef[:]...)
	return out, nil
}

func unpackRespects(raw []byte) (*Respects, error) {
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: respects carries exactly a 32-byte tally reference", ErrTruncated)
	}
	r := &Respects{}
	copy(r.TallyRef[:], raw)
	return r, nil
}

// Other carries arbitrary payload under the reserved tag.
type Other struct {
	Payload []byte
}

func (o *Other) Tag() byte { return TagOther }

func (o *Other) Pack() ([]byte, error) {
	return append([]byte{TagOther}, o.Payload...), nil
}
