package block

import (
	"errors"
	"fmt"

	"github.com/votebadge/votebadge/internal/crypto"
)

const (
	// Fixed frame: signature (64) + address (32) + previous hash or node
	// address (32) + nonce (16), followed by the body.
	SignatureSize = crypto.SignatureSize
	AddressSize   = crypto.AddressSize
	HashSize      = crypto.HashSize
	NonceSize     = 16
	HeaderSize    = SignatureSize + AddressSize + HashSize + NonceSize

	// GenesisBodySize is the fixed body of a genesis block: the node's
	// Curve25519 public key.
	GenesisBodySize = crypto.CurveKeySize

	// Difficulty bounds; out-of-range values coerce to MinDifficulty.
	MinDifficulty = 1
	MaxDifficulty = 4
)

var (
	ErrTooShort        = errors.New("block must be at least 144 bytes")
	ErrGenesisBodySize = errors.New("genesis block body must be exactly 32 bytes")
	ErrNoInput         = errors.New("no block input supplied")
)

// Block is an unpacked normal block. Hash is SHA256(Signature), the 32-byte
// identifier other blocks reference; it is never computed over the frame.
type Block struct {
	Hash      []byte
	Signature []byte
	Address   []byte
	PrevHash  []byte
	Nonce     []byte
	Body      []byte
}

// GenesisBlock is an unpacked genesis block. Address is the genesis
// authority's verify key; the 96..128 region holds the admitted node's
// address and the body is the node's Curve25519 public key.
type GenesisBlock struct {
	Hash        []byte
	Signature   []byte
	Address     []byte
	NodeAddress []byte
	Nonce       []byte
	PublicKey   []byte
}

// Unpack splits raw into a normal block. It performs framing checks only;
// cryptographic validation is the verifier's job.
func Unpack(raw []byte) (*Block, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d", ErrTooShort, len(raw))
	}
	return &Block{
		Hash:      crypto.Hash(raw[0:64]),
		Signature: raw[0:64],
		Address:   raw[64:96],
		PrevHash:  raw[96:128],
		Nonce:     raw[128:144],
		Body:      raw[144:],
	}, nil
}

// UnpackGenesis splits raw into a genesis block. The same 144-byte prefix is
// reinterpreted: bytes 96..128 are the node address and the body is the
// node's public key.
func UnpackGenesis(raw []byte) (*GenesisBlock, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d", ErrTooShort, len(raw))
	}
	return &GenesisBlock{
		Hash:        crypto.Hash(raw[0:64]),
		Signature:   raw[0:64],
		Address:     raw[64:96],
		NodeAddress: raw[96:128],
		Nonce:       raw[128:144],
		PublicKey:   raw[144:],
	}, nil
}

// Pack reassembles the block's byte frame. Pack and Unpack are byte-exact
// inverses.
func (b *Block) Pack() []byte {
	out := make([]byte, 0, HeaderSize+len(b.Body))
	out = append(out, b.Signature...)
	out = append(out, b.Address...)
	out = append(out, b.PrevHash...)
	out = append(out, b.Nonce...)
	out = append(out, b.Body...)
	return out
}

// Pack reassembles the genesis block's byte frame.
func (g *GenesisBlock) Pack() []byte {
	out := make([]byte, 0, HeaderSize+len(g.PublicKey))
	out = append(out, g.Signature...)
	out = append(out, g.Address...)
	out = append(out, g.NodeAddress...)
	out = append(out, g.Nonce...)
	out = append(out, g.PublicKey...)
	return out
}

// Input is the sum of "raw bytes" and "already unpacked block" that most
// entry points accept. Decoding happens lazily at the point of use.
type Input struct {
	raw    []byte
	parsed *Block
}

// Raw wraps packed block bytes as an Input.
func Raw(b []byte) Input { return Input{raw: b} }

// Parsed wraps an unpacked block as an Input.
func Parsed(b *Block) Input { return Input{parsed: b} }

// Resolve returns the unpacked block, decoding raw bytes on each call.
func (in Input) Resolve() (*Block, error) {
	if in.parsed != nil {
		return in.parsed, nil
	}
	if in.raw == nil {
		return nil, ErrNoInput
	}
	return Unpack(in.raw)
}

// GenesisInput mirrors Input for genesis blocks.
type GenesisInput struct {
	raw    []byte
	parsed *GenesisBlock
}

// RawGenesis wraps packed genesis block bytes as a GenesisInput.
func RawGenesis(b []byte) GenesisInput { return GenesisInput{raw: b} }

// ParsedGenesis wraps an unpacked genesis block as a GenesisInput.
func ParsedGenesis(g *GenesisBlock) GenesisInput { return GenesisInput{parsed: g} }

// Resolve returns the unpacked genesis block, decoding raw bytes on each call.
func (in GenesisInput) Resolve() (*GenesisBlock, error) {
	if in.parsed != nil {
		return in.parsed, nil
	}
	if in.raw == nil {
		return nil, ErrNoInput
	}
	return UnpackGenesis(in.raw)
}
