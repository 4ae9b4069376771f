package chain

import (
	"bytes"

	"github.com/votebadge/votebadge/internal/block"
	"github.com/votebadge/votebadge/internal/metrics"
)

// VerifyChain validates an ordered sequence of packed blocks: a genesis
// block at index 0 followed by the node's own blocks. It enforces:
//
//   - every block's signature verifies over its kind's preimage (I1)
//   - every signature hash meets the difficulty floor (I2)
//   - the genesis block is signed by genesisAddress (I3)
//   - every later block links to SHA256 of its predecessor's signature (I4)
//   - from index 2 on, the signer address never changes (I5)
//
// All failures, decoding failures included, collapse to false.
func VerifyChain(blocks [][]byte, genesisAddress []byte, difficulty int) bool {
	ok := verifyChain(blocks, genesisAddress, difficulty)
	if ok {
		metrics.ChainVerifications.WithLabelValues("ok").Inc()
	} else {
		metrics.ChainVerifications.WithLabelValues("fail").Inc()
	}
	return ok
}

func verifyChain(blocks [][]byte, genesisAddress []byte, difficulty int) bool {
	if len(blocks) == 0 {
		return false
	}

	genesis, err := block.UnpackGenesis(blocks[0])
	if err != nil {
		return false
	}
	if !block.VerifyGenesis(block.ParsedGenesis(genesis), genesisAddress, difficulty) {
		return false
	}

	prevHash := genesis.Hash
	var nodeAddress []byte
	for i := 1; i < len(blocks); i++ {
		b, err := block.Unpack(blocks[i])
		if err != nil {
			return false
		}
		if !block.Verify(block.Parsed(b), difficulty) {
			return false
		}
		if !bytes.Equal(b.PrevHash, prevHash) {
			return false
		}
		// The chain belongs to one node; only the genesis block carries a
		// different signer.
		if nodeAddress != nil && !bytes.Equal(b.Address, nodeAddress) {
			return false
		}
		nodeAddress = b.Address
		prevHash = b.Hash
	}
	return true
}
