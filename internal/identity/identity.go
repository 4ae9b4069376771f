package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/votebadge/votebadge/internal/crypto"
)

var (
	ErrSeedFileSize = errors.New("seed file must contain exactly 32 bytes")
)

// Node holds the full identity record derived from a 32-byte signing seed:
// the Ed25519 keypair, the address (the verify key), and the Curve25519
// keypair used to declare an encryption endpoint in the genesis block.
// The seed never leaves the node; everything else is derivable from it.
type Node struct {
	Seed         []byte
	SigningKey   ed25519.PrivateKey
	VerifyKey    ed25519.PublicKey
	Address      []byte
	CurvePrivate []byte
	CurvePublic  []byte
}

// FromSeed derives a complete node record from a 32-byte seed.
func FromSeed(seed []byte) (*Node, error) {
	signingKey, err := crypto.KeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	verifyKey := signingKey.Public().(ed25519.PublicKey)

	curvePriv, err := crypto.DeriveCurve25519Private(seed)
	if err != nil {
		return nil, err
	}
	curvePub, err := crypto.DeriveCurve25519Public(verifyKey)
	if err != nil {
		return nil, fmt.Errorf("deriving curve25519 public key: %w", err)
	}

	owned := make([]byte, crypto.SeedSize)
	copy(owned, seed)
	return &Node{
		Seed:         owned,
		SigningKey:   signingKey,
		VerifyKey:    verifyKey,
		Address:      []byte(verifyKey),
		CurvePrivate: curvePriv,
		CurvePublic:  curvePub,
	}, nil
}

// Generate creates a node from a fresh random seed.
func Generate() (*Node, error) {
	seed := make([]byte, crypto.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("reading random seed: %w", err)
	}
	return FromSeed(seed)
}

// LoadSeed reads a raw 32-byte seed file and derives the node record.
func LoadSeed(path string) (*Node, error) {
	seed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(seed) != crypto.SeedSize {
		return nil, fmt.Errorf("%w: %s holds %d bytes", ErrSeedFileSize, path, len(seed))
	}
	return FromSeed(seed)
}

// SaveSeed writes the node's raw seed to path, readable only by the owner.
func (n *Node) SaveSeed(path string) error {
	return os.WriteFile(path, n.Seed, 0o600)
}

// LoadOrCreate loads the seed file at path, generating and saving a fresh
// seed if the file does not exist yet.
func LoadOrCreate(path string) (*Node, error) {
	node, err := LoadSeed(path)
	if err == nil {
		return node, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	node, err = Generate()
	if err != nil {
		return nil, err
	}
	if err := node.SaveSeed(path); err != nil {
		return nil, err
	}
	return node, nil
}
