package chain

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votebadge/votebadge/internal/block"
	"github.com/votebadge/votebadge/internal/identity"
)

func testManager(t *testing.T, authority, node *identity.Node) *Manager {
	t.Helper()
	genesis, err := block.CreateGenesis(context.Background(), authority.SigningKey, node.Address, node.CurvePublic, 1)
	require.NoError(t, err)
	mgr, err := NewManager("test", genesis, authority.Address, 1, zerolog.Nop())
	require.NoError(t, err)
	return mgr
}

func TestManagerAppendAndVerify(t *testing.T) {
	authority := testNode(t, 30)
	node := testNode(t, 31)
	mgr := testManager(t, authority, node)
	require.Equal(t, 1, mgr.Len())

	ctx := context.Background()
	first, err := mgr.Append(ctx, node.SigningKey, []byte("first"))
	require.NoError(t, err)
	second, err := mgr.Append(ctx, node.SigningKey, []byte("second"))
	require.NoError(t, err)

	assert.Equal(t, 3, mgr.Len())
	assert.Equal(t, second.Hash, mgr.HeadHash())
	assert.Equal(t, first.Hash, second.PrevHash)
	assert.True(t, mgr.Verify())
}

func TestManagerBlockLookups(t *testing.T) {
	authority := testNode(t, 32)
	node := testNode(t, 33)
	mgr := testManager(t, authority, node)

	appended, err := mgr.Append(context.Background(), node.SigningKey, []byte("payload"))
	require.NoError(t, err)

	byHash, err := mgr.BlockByHash(appended.Hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), byHash.Body)

	byIndex, err := mgr.BlockAt(1)
	require.NoError(t, err)
	assert.Equal(t, appended.Hash, byIndex.Hash)

	_, err = mgr.BlockByHash(make([]byte, 32))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = mgr.BlockAt(9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerSnapshotIsCopy(t *testing.T) {
	authority := testNode(t, 34)
	node := testNode(t, 35)
	mgr := testManager(t, authority, node)

	snap := mgr.Snapshot()
	require.Len(t, snap, 1)
	_, err := mgr.Append(context.Background(), node.SigningKey, []byte("after snapshot"))
	require.NoError(t, err)
	assert.Len(t, snap, 1, "snapshot does not grow with the chain")
}

func TestManagerPersistence(t *testing.T) {
	authority := testNode(t, 36)
	node := testNode(t, 37)
	mgr := testManager(t, authority, node)
	_, err := mgr.Append(context.Background(), node.SigningKey, []byte("persist me"))
	require.NoError(t, err)

	root := t.TempDir()
	require.NoError(t, mgr.Save(root))

	reopened, err := Open(root, "test", authority.Address, 1, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, mgr.Len(), reopened.Len())
	assert.Equal(t, mgr.HeadHash(), reopened.HeadHash())
}

func TestOpenManagerRejectsInvalidChain(t *testing.T) {
	authority := testNode(t, 38)
	node := testNode(t, 39)
	raw := buildChain(t, authority, node, []byte("a"))
	raw[1][144] ^= 0x01

	_, err := OpenManager("bad", raw, authority.Address, 1, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidChain)
}

func TestManagerGenesis(t *testing.T) {
	authority := testNode(t, 40)
	node := testNode(t, 41)
	mgr := testManager(t, authority, node)

	genesis, err := mgr.Genesis()
	require.NoError(t, err)
	assert.Equal(t, authority.Address, genesis.Address)
	assert.Equal(t, node.Address, genesis.NodeAddress)
}
