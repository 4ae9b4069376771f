// Package election interprets decoded chains as elections: it indexes
// proposals, nominations, ballots, and collections by block hash, and turns
// a collected ballot set into a packed tally body ready for a new block.
package election

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/votebadge/votebadge/internal/block"
	"github.com/votebadge/votebadge/internal/body"
	"github.com/votebadge/votebadge/internal/metrics"
	"github.com/votebadge/votebadge/internal/tally"
)

var (
	ErrUnknownProposal   = errors.New("no proposal with that block hash")
	ErrUnknownCollection = errors.New("no ballot collection with that block hash")
	ErrUnknownBallot     = errors.New("collection references an uncollected ballot")
	ErrWrongProposal     = errors.New("ballot references a different proposal")
	ErrMethodNotTallied  = errors.New("no tally algorithm for this election method")
)

// Election is the indexed state of one proposal: its decoded body plus the
// candidates nominated for it. Ballots and collections are indexed
// separately, by block hash, on the Index.
type Election struct {
	BlockHash [32]byte
	Proposal  *body.Proposal

	// Nominated candidates beyond the proposal's own, in arrival order.
	Nominations []body.CandidateRecord
}

// Index accumulates governance actions from one or more chains. It is a
// read-mostly structure: chains are scanned by the owning node, tallies are
// computed on demand.
type Index struct {
	mu          sync.RWMutex
	elections   map[[32]byte]*Election
	ballots     map[[32]byte]*body.Ballot
	collections map[[32]byte]*body.BallotCollection
	log         zerolog.Logger
}

// NewIndex returns an empty index.
func NewIndex(logger zerolog.Logger) *Index {
	return &Index{
		elections:   make(map[[32]byte]*Election),
		ballots:     make(map[[32]byte]*body.Ballot),
		collections: make(map[[32]byte]*body.BallotCollection),
		log:         logger.With().Str("component", "election").Logger(),
	}
}

// ScanChain decodes every normal block of a packed chain and registers the
// governance actions it finds. Bodies that do not decode are skipped; a
// chain may legitimately carry broadcasts or opaque payloads between
// governance actions.
func (ix *Index) ScanChain(blocks [][]byte) error {
	for i := 1; i < len(blocks); i++ {
		b, err := block.Unpack(blocks[i])
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		action, err := body.Unpack(b.Body)
		if err != nil {
			ix.log.Debug().Int("index", i).Err(err).Msg("skipping undecodable body")
			continue
		}
		var hash [32]byte
		copy(hash[:], b.Hash)
		ix.Observe(hash, action)
	}
	return nil
}

// Observe registers one decoded action under its block hash. Party matters
// are unwrapped and indexed by the same hash.
func (ix *Index) Observe(blockHash [32]byte, action body.Action) {
	if pm, ok := action.(*body.PartyMatter); ok {
		ix.Observe(blockHash, pm.Inner)
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	switch act := action.(type) {
	case *body.Proposal:
		ix.elections[blockHash] = &Election{BlockHash: blockHash, Proposal: act}
		ix.log.Info().Hex("proposal", blockHash[:]).Str("method", body.TagName(act.Method)).Msg("proposal indexed")
	case *body.Nomination:
		if e, ok := ix.elections[act.ProposalRef]; ok {
			e.Nominations = append(e.Nominations, act.Candidate)
		}
	case *body.Ballot:
		ix.ballots[blockHash] = act
	case *body.BallotCollection:
		ix.collections[blockHash] = act
	}
}

// Proposal returns the indexed election for a proposal block hash.
func (ix *Index) Proposal(hash [32]byte) (*Election, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.elections[hash]
	return e, ok
}

// Tally resolves a ballot collection against its proposal, runs the
// proposal's election method, and returns the packed tally action. The
// collection chain is followed through PrevCollection so split collections
// tally as one.
func (ix *Index) Tally(collectionHash [32]byte) (body.Action, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ballots, election, err := ix.gatherLocked(collectionHash)
	if err != nil {
		return nil, err
	}
	proposal := election.Proposal
	metrics.TalliesRun.WithLabelValues(body.TagName(proposal.Method)).Inc()

	candidates := make([]tally.Candidate, 0, len(proposal.Candidates)+len(election.Nominations))
	for _, c := range proposal.Candidates {
		candidates = append(candidates, tally.Candidate(c.Hash[:]))
	}
	for _, c := range election.Nominations {
		candidates = append(candidates, tally.Candidate(c.Hash[:]))
	}

	switch proposal.Method {
	case body.TagProposalPlurality, body.TagProposalApproval:
		return pluralityTally(collectionHash, proposal, candidates, ballots)
	case body.TagProposalIRV:
		return irvTally(collectionHash, proposal, candidates, ballots)
	case body.TagProposalIRVCoombs:
		return coombsTally(collectionHash, proposal, candidates, ballots)
	}
	return nil, fmt.Errorf("%w: %s", ErrMethodNotTallied, body.TagName(proposal.Method))
}

// gatherLocked walks the collection chain and resolves every referenced
// ballot, newest collection first.
func (ix *Index) gatherLocked(collectionHash [32]byte) ([]*body.Ballot, *Election, error) {
	var zero [32]byte
	var ballots []*body.Ballot
	var election *Election

	next := collectionHash
	for next != zero {
		collection, ok := ix.collections[next]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %x", ErrUnknownCollection, next)
		}
		e, ok := ix.elections[collection.ProposalRef]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %x", ErrUnknownProposal, collection.ProposalRef)
		}
		if election == nil {
			election = e
		} else if election != e {
			return nil, nil, ErrWrongProposal
		}

		for _, ballotHash := range collection.Ballots {
			ballot, ok := ix.ballots[ballotHash]
			if !ok {
				return nil, nil, fmt.Errorf("%w: %x", ErrUnknownBallot, ballotHash)
			}
			if ballot.ProposalRef != collection.ProposalRef {
				return nil, nil, ErrWrongProposal
			}
			ballots = append(ballots, ballot)
		}
		next = collection.PrevCollection
	}
	return ballots, election, nil
}

func pluralityTally(collectionHash [32]byte, proposal *body.Proposal, candidates []tally.Candidate, ballots []*body.Ballot) (body.Action, error) {
	marks := make([][]tally.Candidate, 0, len(ballots))
	for _, b := range ballots {
		ballot := make([]tally.Candidate, 0, len(b.Candidates))
		for _, hash := range b.Candidates {
			ballot = append(ballot, tally.Candidate(hash[:]))
		}
		marks = append(marks, ballot)
	}

	result := tally.Plurality(int(proposal.Winners), candidates, marks, int(proposal.Quorum))

	packed := &body.PluralityTally{
		CollectionRef:  collectionHash,
		MeetsQuorum:    result.MeetsQuorum,
		Ties:           uint8(result.Ties),
		ValidBallots:   uint16(result.ValidBallots),
		InvalidBallots: uint16(result.InvalidBallots),
		ValidVotes:     uint16(result.ValidVotes),
		InvalidVotes:   uint16(result.InvalidVotes),
	}
	for _, w := range result.Winners {
		packed.Winners = append(packed.Winners, candidateHash(w))
	}
	packed.Tally = countEntries(result.Tally)
	return packed, nil
}

func irvTally(collectionHash [32]byte, proposal *body.Proposal, candidates []tally.Candidate, ballots []*body.Ballot) (body.Action, error) {
	ranked := rankedBallots(ballots)
	normalized, allCandidates := tally.NormalizeRankedBallots(ranked, candidates, "")
	result := tally.IRV(allCandidates, normalized, int(proposal.Quorum))

	packed := &body.RankedTally{
		Method:           body.TagProposalIRV,
		CollectionRef:    collectionHash,
		MeetsQuorum:      result.MeetsQuorum,
		ValidBallots:     uint16(result.ValidBallots),
		InvalidBallots:   uint16(result.InvalidBallots),
		ExhaustedBallots: uint16(result.ExhaustedBallots),
		Winner:           candidateHash(result.Winner),
	}
	for _, round := range result.Rounds {
		packed.Rounds = append(packed.Rounds, countEntries(round))
	}
	return packed, nil
}

func coombsTally(collectionHash [32]byte, proposal *body.Proposal, candidates []tally.Candidate, ballots []*body.Ballot) (body.Action, error) {
	ranked := rankedBallots(ballots)
	normalized, allCandidates := tally.NormalizeRankedBallots(ranked, candidates, "")
	result := tally.IRVCoombs(allCandidates, normalized, int(proposal.Quorum))

	packed := &body.RankedTally{
		Method:           body.TagProposalIRVCoombs,
		CollectionRef:    collectionHash,
		MeetsQuorum:      result.MeetsQuorum,
		ValidBallots:     uint16(result.ValidBallots),
		InvalidBallots:   uint16(result.InvalidBallots),
		ExhaustedBallots: uint16(result.ExhaustedBallots),
		Winner:           candidateHash(result.Winner),
	}
	for _, round := range result.Rounds {
		packed.Rounds = append(packed.Rounds, countEntries(round.Highest))
	}
	return packed, nil
}

func rankedBallots(ballots []*body.Ballot) []tally.RankedBallot {
	out := make([]tally.RankedBallot, 0, len(ballots))
	for _, b := range ballots {
		ranked := make(tally.RankedBallot, 0, len(b.Candidates))
		for _, hash := range b.Candidates {
			ranked = append(ranked, tally.Rank{tally.Candidate(hash[:])})
		}
		out = append(out, ranked)
	}
	return out
}

// countEntries converts engine counts to wire entries. Candidates written in
// by name rather than hash cannot frame as 32-byte references and are
// skipped; fractional counts round to the nearest whole vote.
func countEntries(counts []tally.Count) []body.TallyEntry {
	out := make([]body.TallyEntry, 0, len(counts))
	for _, c := range counts {
		if len(c.Candidate) != 32 {
			continue
		}
		out = append(out, body.TallyEntry{
			Hash:  candidateHash(c.Candidate),
			Votes: uint16(c.Votes + 0.5),
		})
	}
	return out
}

func candidateHash(c tally.Candidate) [32]byte {
	var hash [32]byte
	copy(hash[:], c)
	return hash
}
