// Package body implements the tagged binary encoding of governance actions
// carried in block bodies. Framing is canonical: all integers big-endian,
// hashes raw 32-byte SHA-256, no padding and no trailing bytes. Intros,
// candidate data and party names carry a two-byte length prefix; the
// payloads of messages, broadcasts, references and OTHER bodies are not
// prefixed and run to the end of the body.
package body

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBody         = errors.New("body is empty")
	ErrUnknownTag        = errors.New("unknown control character")
	ErrTruncated         = errors.New("body is truncated")
	ErrTrailingBytes     = errors.New("body has trailing bytes")
	ErrIntroTooLong      = errors.New("intro cannot exceed 65535 bytes")
	ErrNoCandidates      = errors.New("at least one candidate is required")
	ErrTooManyCandidates = errors.New("maximum of 255 candidates per election")
	ErrCandidateTooLong  = errors.New("candidate data cannot exceed 65535 bytes")
	ErrWinnersRange      = errors.New("number of winners must be at least 1 and less than the number of candidates")
	ErrDuplicateHash     = errors.New("duplicate candidate hash")
	ErrHashMismatch      = errors.New("candidate hash does not match candidate data")
	ErrBadHashLength     = errors.New("candidate reference must be 32 bytes")
	ErrUnsupportedMethod = errors.New("no tally layout for this election method")
	ErrNestedPartyMatter = errors.New("party matter cannot nest another party matter")
	ErrDescriptorLength  = errors.New("method descriptor must be at most 10 bytes")
)

// Action is one decoded governance action. Pack renders the full body
// including the leading control character; Unpack is its inverse.
type Action interface {
	Tag() byte
	Pack() ([]byte, error)
}

// Unpack decodes a block body into its governance action. The tag byte
// selects the sub-schema; malformed framing surfaces as a structured error.
func Unpack(raw []byte) (Action, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBody
	}
	tag, rest := raw[0], raw[1:]

	switch {
	case IsProposalTag(tag):
		return unpackProposal(tag, rest)
	case IsBallotTag(tag):
		return unpackBallot(tag, rest)
	}

	switch tag {
	case TagNominate:
		return unpackNomination(rest)
	case TagCollectBallots:
		return unpackBallotCollection(rest)
	case TagTallyOfVotes:
		return unpackTally(rest)
	case TagTallyNewAlg:
		return unpackNewAlgTally(rest)
	case TagDeclareParty:
		return unpackPartyDeclaration(rest)
	case TagPartyMatter:
		return unpackPartyMatter(rest)
	case TagMessage:
		return unpackMessage(rest)
	case TagBroadcast:
		return &Broadcast{Payload: cloneBytes(rest)}, nil
	case TagReference:
		return unpackReference(rest)
	case TagOther:
		return &Other{Payload: cloneBytes(rest)}, nil
	case TagPayRespects:
		return unpackRespects(rest)
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, tag)
}

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

func need(raw []byte, n int, what string) error {
	if len(raw) < n {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrTruncated, what, n, len(raw))
	}
	return nil
}
