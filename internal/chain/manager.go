package chain

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/votebadge/votebadge/internal/block"
	"github.com/votebadge/votebadge/internal/crypto"
	"github.com/votebadge/votebadge/internal/metrics"
)

const blockCacheSize = 256

var (
	ErrEmptyChain   = errors.New("chain has no blocks")
	ErrInvalidChain = errors.New("chain failed verification")
	ErrNotFound     = errors.New("block not found")
)

// Manager owns one node's chain: the genesis block that admitted the node
// plus the node's own appended blocks. The chain is a single-writer
// append-only structure; readers snapshot under a read lock. Blocks are kept
// packed, with an LRU cache of unpacked blocks keyed by hash.
type Manager struct {
	mu sync.RWMutex

	name           string
	genesisAddress []byte
	difficulty     int
	blocks         [][]byte
	heads          []string // hash of each block, index-aligned
	cache          *lru.Cache
	log            zerolog.Logger
}

// NewManager starts a chain from a freshly created genesis block.
func NewManager(name string, genesis *block.GenesisBlock, genesisAddress []byte, difficulty int, logger zerolog.Logger) (*Manager, error) {
	return newManager(name, [][]byte{genesis.Pack()}, genesisAddress, difficulty, logger)
}

// OpenManager adopts an existing chain, verifying it first.
func OpenManager(name string, blocks [][]byte, genesisAddress []byte, difficulty int, logger zerolog.Logger) (*Manager, error) {
	return newManager(name, blocks, genesisAddress, difficulty, logger)
}

func newManager(name string, blocks [][]byte, genesisAddress []byte, difficulty int, logger zerolog.Logger) (*Manager, error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyChain
	}
	difficulty = crypto.ClampDifficulty(difficulty)
	if !VerifyChain(blocks, genesisAddress, difficulty) {
		return nil, ErrInvalidChain
	}
	cache, err := lru.New(blockCacheSize)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		name:           name,
		genesisAddress: append([]byte(nil), genesisAddress...),
		difficulty:     difficulty,
		blocks:         append([][]byte(nil), blocks...),
		cache:          cache,
		log:            logger.With().Str("component", "chain").Str("chain", name).Logger(),
	}
	for _, raw := range m.blocks {
		m.heads = append(m.heads, string(crypto.Hash(raw[:block.SignatureSize])))
	}
	m.log.Info().Int("blocks", len(m.blocks)).Msg("chain opened")
	return m, nil
}

// Name returns the chain's name.
func (m *Manager) Name() string { return m.name }

// Len returns the number of blocks, genesis included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// HeadHash returns the hash of the latest block.
func (m *Manager) HeadHash() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return []byte(m.heads[len(m.heads)-1])
}

// Snapshot returns a copy of the packed chain for readers.
func (m *Manager) Snapshot() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(m.blocks))
	copy(out, m.blocks)
	return out
}

// Append builds, signs, and appends a new block carrying body, returning the
// unpacked result. The PoW search inherits ctx for cancellation.
func (m *Manager) Append(ctx context.Context, key ed25519.PrivateKey, body []byte) (*block.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, err := m.blockAtLocked(len(m.blocks) - 1)
	if err != nil {
		return nil, err
	}
	b, err := block.Create(ctx, key, block.Parsed(prev), body, m.difficulty)
	if err != nil {
		return nil, fmt.Errorf("building block %d: %w", len(m.blocks), err)
	}

	m.blocks = append(m.blocks, b.Pack())
	m.heads = append(m.heads, string(b.Hash))
	m.cache.Add(string(b.Hash), b)
	metrics.BlocksAppended.Inc()
	m.log.Debug().Int("index", len(m.blocks)-1).Hex("hash", b.Hash).Int("body_bytes", len(b.Body)).Msg("block appended")
	return b, nil
}

// BlockByHash returns the unpacked normal block with the given hash.
// The genesis block is not addressable here; it has no action body.
func (m *Manager) BlockByHash(hash []byte) (*block.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if cached, ok := m.cache.Get(string(hash)); ok {
		return cached.(*block.Block), nil
	}
	for i := 1; i < len(m.heads); i++ {
		if m.heads[i] == string(hash) {
			return m.blockAtLocked(i)
		}
	}
	return nil, ErrNotFound
}

// BlockAt returns the unpacked normal block at index i (i >= 1).
func (m *Manager) BlockAt(i int) (*block.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blockAtLocked(i)
}

func (m *Manager) blockAtLocked(i int) (*block.Block, error) {
	if i == 0 {
		// The genesis frame reads as a normal block for linking purposes:
		// only its hash is consumed by the builder.
		g, err := block.UnpackGenesis(m.blocks[0])
		if err != nil {
			return nil, err
		}
		return &block.Block{
			Hash:      g.Hash,
			Signature: g.Signature,
			Address:   g.Address,
			PrevHash:  g.NodeAddress,
			Nonce:     g.Nonce,
			Body:      g.PublicKey,
		}, nil
	}
	if i < 0 || i >= len(m.blocks) {
		return nil, ErrNotFound
	}
	if cached, ok := m.cache.Get(m.heads[i]); ok {
		return cached.(*block.Block), nil
	}
	b, err := block.Unpack(m.blocks[i])
	if err != nil {
		return nil, err
	}
	m.cache.Add(m.heads[i], b)
	return b, nil
}

// Genesis returns the unpacked genesis block.
func (m *Manager) Genesis() (*block.GenesisBlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return block.UnpackGenesis(m.blocks[0])
}

// Verify re-validates the whole chain against the configured genesis
// authority and difficulty floor.
func (m *Manager) Verify() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return VerifyChain(m.blocks, m.genesisAddress, m.difficulty)
}

// Save persists the chain under root via the block-file store.
func (m *Manager) Save(root string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return SaveChain(root, m.name, m.blocks)
}

// Open loads a persisted chain and wraps it in a manager.
func Open(root, name string, genesisAddress []byte, difficulty int, logger zerolog.Logger) (*Manager, error) {
	blocks, err := LoadChain(root, name)
	if err != nil {
		return nil, err
	}
	return OpenManager(name, blocks, genesisAddress, difficulty, logger)
}
