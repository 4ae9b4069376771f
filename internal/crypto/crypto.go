package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"errors"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

const (
	// SeedSize is the length of the raw signing seed a node stores.
	SeedSize = 32
	// AddressSize is the length of an Ed25519 verify key, which doubles as
	// the node address.
	AddressSize = 32
	// SignatureSize is the length of a raw Ed25519 signature.
	SignatureSize = 64
	// HashSize is the length of a SHA-256 digest.
	HashSize = 32
	// CurveKeySize is the length of a Curve25519 key.
	CurveKeySize = 32
)

var (
	ErrBadSeedLength    = errors.New("seed must be 32 bytes")
	ErrBadAddressLength = errors.New("address must be 32 bytes")
)

// Hash returns the raw SHA-256 digest of data.
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sign signs message with the given Ed25519 private key and returns the raw
// 64-byte signature.
func Sign(key ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(key, message)
}

// Verify reports whether signature is a valid Ed25519 signature over message
// by the key at address. Malformed inputs verify as false; nothing panics and
// no error escapes.
func Verify(address, message, signature []byte) bool {
	if len(address) != AddressSize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(address), message, signature)
}

// MeetsDifficulty reports whether the SHA-256 of signature begins with
// difficulty zero bytes. A difficulty of zero is vacuously met.
func MeetsDifficulty(signature []byte, difficulty int) bool {
	hash := Hash(signature)
	for i := 0; i < difficulty; i++ {
		if hash[i] > 0 {
			return false
		}
	}
	return true
}

// ClampDifficulty coerces out-of-range difficulties to 1. Valid values are
// 1 through 4.
func ClampDifficulty(difficulty int) int {
	if difficulty < 1 || difficulty > 4 {
		return 1
	}
	return difficulty
}

// KeyFromSeed derives the Ed25519 signing key from a 32-byte seed.
func KeyFromSeed(seed []byte) (ed25519.PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, ErrBadSeedLength
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// DeriveCurve25519Private derives the node's Curve25519 private key from its
// signing seed, matching libsodium's crypto_sign_ed25519_sk_to_curve25519:
// the clamped first half of SHA-512(seed).
func DeriveCurve25519Private(seed []byte) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, ErrBadSeedLength
	}
	digest := sha512.Sum512(seed)
	priv := make([]byte, CurveKeySize)
	copy(priv, digest[:CurveKeySize])
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64
	return priv, nil
}

// DeriveCurve25519Public converts an Ed25519 verify key (a node address) to
// its Curve25519 public key via the birational map to Montgomery form.
func DeriveCurve25519Public(address []byte) ([]byte, error) {
	if len(address) != AddressSize {
		return nil, ErrBadAddressLength
	}
	point, err := new(edwards25519.Point).SetBytes(address)
	if err != nil {
		return nil, err
	}
	return point.BytesMontgomery(), nil
}

// CurvePublicFromPrivate computes the Curve25519 public key matching a
// Curve25519 private scalar.
func CurvePublicFromPrivate(priv []byte) ([]byte, error) {
	return curve25519.X25519(priv, curve25519.Basepoint)
}
