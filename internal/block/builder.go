package block

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/votebadge/votebadge/internal/crypto"
	"github.com/votebadge/votebadge/internal/metrics"
)

// Create assembles and signs a new block extending prev. It draws random
// 16-byte nonces and re-signs until the signature's SHA-256 carries the
// required leading zero bytes. The search is unbounded in time (expected
// cost 256^difficulty signatures); cancellation is cooperative through ctx,
// checked between nonce attempts.
func Create(ctx context.Context, key ed25519.PrivateKey, prev Input, body []byte, difficulty int) (*Block, error) {
	prevBlock, err := prev.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving previous block: %w", err)
	}
	difficulty = crypto.ClampDifficulty(difficulty)

	address := key.Public().(ed25519.PublicKey)
	nonce := make([]byte, NonceSize)
	preimage := make([]byte, 0, HashSize+NonceSize+len(body))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("drawing nonce: %w", err)
		}

		preimage = preimage[:0]
		preimage = append(preimage, prevBlock.Hash...)
		preimage = append(preimage, nonce...)
		preimage = append(preimage, body...)

		signature := crypto.Sign(key, preimage)
		metrics.PowAttempts.Inc()
		if !crypto.MeetsDifficulty(signature, difficulty) {
			continue
		}

		metrics.BlocksBuilt.WithLabelValues("normal").Inc()
		return &Block{
			Hash:      crypto.Hash(signature),
			Signature: signature,
			Address:   append([]byte(nil), address...),
			PrevHash:  append([]byte(nil), prevBlock.Hash...),
			Nonce:     append([]byte(nil), nonce...),
			Body:      append([]byte(nil), body...),
		}, nil
	}
}

// CreateGenesis assembles and signs a genesis block admitting nodeAddress to
// the federation. The signature covers node address, nonce, and the node's
// Curve25519 public key; there is no previous-block link.
func CreateGenesis(ctx context.Context, genesisKey ed25519.PrivateKey, nodeAddress, publicKey []byte, difficulty int) (*GenesisBlock, error) {
	if len(nodeAddress) != AddressSize {
		return nil, fmt.Errorf("node address must be %d bytes, got %d", AddressSize, len(nodeAddress))
	}
	if len(publicKey) != GenesisBodySize {
		return nil, fmt.Errorf("%w: got %d", ErrGenesisBodySize, len(publicKey))
	}
	difficulty = crypto.ClampDifficulty(difficulty)

	authority := genesisKey.Public().(ed25519.PublicKey)
	nonce := make([]byte, NonceSize)
	preimage := make([]byte, 0, AddressSize+NonceSize+GenesisBodySize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("drawing nonce: %w", err)
		}

		preimage = preimage[:0]
		preimage = append(preimage, nodeAddress...)
		preimage = append(preimage, nonce...)
		preimage = append(preimage, publicKey...)

		signature := crypto.Sign(genesisKey, preimage)
		metrics.PowAttempts.Inc()
		if !crypto.MeetsDifficulty(signature, difficulty) {
			continue
		}

		metrics.BlocksBuilt.WithLabelValues("genesis").Inc()
		return &GenesisBlock{
			Hash:        crypto.Hash(signature),
			Signature:   signature,
			Address:     append([]byte(nil), authority...),
			NodeAddress: append([]byte(nil), nodeAddress...),
			Nonce:       append([]byte(nil), nonce...),
			PublicKey:   append([]byte(nil), publicKey...),
		}, nil
	}
}
