package block

import (
	"bytes"

	"github.com/votebadge/votebadge/internal/crypto"
)

// Verify performs the block-local checks on a normal block: the signature
// must verify under the declared address over (previous hash, nonce, body),
// and its hash must meet the difficulty floor. Any failure, including a
// framing failure on raw input, is reported as false.
func Verify(in Input, difficulty int) bool {
	b, err := in.Resolve()
	if err != nil {
		return false
	}
	difficulty = crypto.ClampDifficulty(difficulty)
	if !crypto.MeetsDifficulty(b.Signature, difficulty) {
		return false
	}

	preimage := make([]byte, 0, len(b.PrevHash)+len(b.Nonce)+len(b.Body))
	preimage = append(preimage, b.PrevHash...)
	preimage = append(preimage, b.Nonce...)
	preimage = append(preimage, b.Body...)
	return crypto.Verify(b.Address, preimage, b.Signature)
}

// VerifyGenesis performs the block-local checks on a genesis block: the
// declared address must equal the genesis authority, the signature must
// verify over (node address, nonce, public key), and the difficulty floor
// must be met.
func VerifyGenesis(in GenesisInput, genesisAddress []byte, difficulty int) bool {
	g, err := in.Resolve()
	if err != nil {
		return false
	}
	if !bytes.Equal(g.Address, genesisAddress) {
		return false
	}
	difficulty = crypto.ClampDifficulty(difficulty)
	if !crypto.MeetsDifficulty(g.Signature, difficulty) {
		return false
	}

	preimage := make([]byte, 0, len(g.NodeAddress)+len(g.Nonce)+len(g.PublicKey))
	preimage = append(preimage, g.NodeAddress...)
	preimage = append(preimage, g.Nonce...)
	preimage = append(preimage, g.PublicKey...)
	return crypto.Verify(g.Address, preimage, g.Signature)
}
