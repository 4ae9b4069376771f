package chain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/votebadge/votebadge/internal/block"
	"github.com/votebadge/votebadge/internal/crypto"
)

const (
	chainDirSuffix  = "_chain"
	blockFileSuffix = "_block"
)

var (
	ErrEmptyChainDir   = errors.New("chain directory holds no block files")
	ErrMissingIndex    = errors.New("chain directory is missing a block index")
	ErrDuplicateIndex  = errors.New("chain directory holds a duplicate block index")
	ErrBlockFileLength = errors.New("block file shorter than its hash prefix plus a block header")
)

// ChainDir returns the directory a named chain is stored under.
func ChainDir(root, name string) string {
	return filepath.Join(root, name+chainDirSuffix)
}

// SaveChain writes every block of a chain under root as
// <name>_chain/<index>_block. Each file carries the block's 32-byte hash
// followed by the packed frame.
func SaveChain(root, name string, blocks [][]byte) error {
	dir := ChainDir(root, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	for i, raw := range blocks {
		if len(raw) < block.HeaderSize {
			return fmt.Errorf("block %d: %w", i, block.ErrTooShort)
		}
		contents := make([]byte, 0, crypto.HashSize+len(raw))
		contents = append(contents, crypto.Hash(raw[:block.SignatureSize])...)
		contents = append(contents, raw...)
		path := filepath.Join(dir, fmt.Sprintf("%d%s", i, blockFileSuffix))
		if err := os.WriteFile(path, contents, 0o600); err != nil {
			return err
		}
	}
	return nil
}

// LoadChain reads a stored chain back as packed block frames, stripping the
// 32-byte hash prefix of each file (the hash is rederived from the
// signature). Block order is reconstructed from the numeric filename
// prefixes, never from directory listing order; a gap or duplicate index is
// an error.
func LoadChain(root, name string) ([][]byte, error) {
	dir := ChainDir(root, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	indexed := make(map[int]string)
	indices := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		index, ok := parseBlockIndex(entry.Name())
		if !ok {
			continue
		}
		if _, seen := indexed[index]; seen {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, index)
		}
		indexed[index] = entry.Name()
		indices = append(indices, index)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyChainDir, dir)
	}
	sort.Ints(indices)

	blocks := make([][]byte, 0, len(indices))
	for i, index := range indices {
		if index != i {
			return nil, fmt.Errorf("%w: %d", ErrMissingIndex, i)
		}
		contents, err := os.ReadFile(filepath.Join(dir, indexed[index]))
		if err != nil {
			return nil, err
		}
		if len(contents) < crypto.HashSize+block.HeaderSize {
			return nil, fmt.Errorf("%w: %s", ErrBlockFileLength, indexed[index])
		}
		blocks = append(blocks, contents[crypto.HashSize:])
	}
	return blocks, nil
}

func parseBlockIndex(name string) (int, bool) {
	prefix, found := strings.CutSuffix(name, blockFileSuffix)
	if !found {
		return 0, false
	}
	index, err := strconv.Atoi(prefix)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
