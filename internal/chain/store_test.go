package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votebadge/votebadge/internal/crypto"
)

func TestStoreRoundTrip(t *testing.T) {
	authority := testNode(t, 20)
	node := testNode(t, 21)

	// Enough blocks that lexical filename order (1, 10, 11, 2, ...) would
	// scramble the chain if the store trusted it.
	bodies := make([][]byte, 12)
	for i := range bodies {
		bodies[i] = []byte{byte(i)}
	}
	chain := buildChain(t, authority, node, bodies...)

	root := t.TempDir()
	require.NoError(t, SaveChain(root, "alice", chain))

	loaded, err := LoadChain(root, "alice")
	require.NoError(t, err)
	require.Len(t, loaded, len(chain))
	for i := range chain {
		assert.Equal(t, chain[i], loaded[i], "block %d", i)
	}
	assert.True(t, VerifyChain(loaded, authority.Address, 1))
}

func TestStoreFileLayout(t *testing.T) {
	authority := testNode(t, 22)
	node := testNode(t, 23)
	chain := buildChain(t, authority, node, []byte("body"))

	root := t.TempDir()
	require.NoError(t, SaveChain(root, "bob", chain))

	contents, err := os.ReadFile(filepath.Join(ChainDir(root, "bob"), "1_block"))
	require.NoError(t, err)
	// Leading 32 bytes are the block hash; the rest is the packed frame.
	assert.Equal(t, crypto.Hash(chain[1][:64]), contents[:32])
	assert.Equal(t, chain[1], contents[32:])
}

func TestLoadChainIgnoresStrayFiles(t *testing.T) {
	authority := testNode(t, 24)
	node := testNode(t, 25)
	chain := buildChain(t, authority, node, []byte("x"))

	root := t.TempDir()
	require.NoError(t, SaveChain(root, "carol", chain))
	dir := ChainDir(root, "carol")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("not a block"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x_block"), []byte("bad index"), 0o600))

	loaded, err := LoadChain(root, "carol")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestLoadChainRejectsGap(t *testing.T) {
	authority := testNode(t, 26)
	node := testNode(t, 27)
	chain := buildChain(t, authority, node, []byte("a"), []byte("b"))

	root := t.TempDir()
	require.NoError(t, SaveChain(root, "dave", chain))
	require.NoError(t, os.Remove(filepath.Join(ChainDir(root, "dave"), "1_block")))

	_, err := LoadChain(root, "dave")
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestLoadChainMissingDir(t *testing.T) {
	_, err := LoadChain(t.TempDir(), "nobody")
	assert.Error(t, err)
}
