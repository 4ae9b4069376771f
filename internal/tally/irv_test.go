package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Twenty ranked ballots; the last one ranks only two candidates and
// exhausts after the first elimination round.
func rankedFixture() []RankedBallot {
	return []RankedBallot{
		Ranked(gandi, jesus, trump, obama),
		Ranked(gandi, jesus, trump, obama),
		Ranked(gandi, jesus, trump, obama),
		Ranked(gandi, jesus, trump, obama),
		Ranked(gandi, jesus, obama, trump),
		Ranked(gandi, jesus, obama, trump),
		Ranked(gandi, jesus, obama, trump),
		Ranked(gandi, obama, trump, jesus),
		Ranked(jesus, obama, trump, gandi),
		Ranked(jesus, gandi, trump, obama),
		Ranked(jesus, gandi, trump, obama),
		Ranked(jesus, gandi, trump, obama),
		Ranked(jesus, gandi, trump, obama),
		Ranked(jesus, gandi, trump, obama),
		Ranked(trump, gandi, jesus, obama),
		Ranked(trump, gandi, jesus, obama),
		Ranked(trump, obama, jesus, gandi),
		Ranked(obama, gandi, trump, jesus),
		Ranked(obama, gandi, trump, jesus),
		Ranked(obama, trump),
	}
}

func TestIRVFixture(t *testing.T) {
	result := IRV(electorate, rankedFixture(), 10)

	// Round 0: Gandi 8, Jesus 6, Trump 3, Obama 3 — no majority of 20.
	// Trump and Obama are tied at the minimum and eliminated together; the
	// two-candidate ballot exhausts. Round 1: Gandi 12 of 19, a majority.
	assert.Equal(t, gandi, result.Winner)
	require.Len(t, result.Rounds, 2)
	assert.Equal(t, 0, result.InvalidBallots)
	assert.Equal(t, 20, result.ValidBallots)
	assert.Equal(t, 1, result.ExhaustedBallots)
	assert.True(t, result.MeetsQuorum)

	round0 := map[Candidate]float64{}
	for _, entry := range result.Rounds[0] {
		round0[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 8, round0[gandi], 1e-9)
	assert.InDelta(t, 6, round0[jesus], 1e-9)
	assert.InDelta(t, 3, round0[trump], 1e-9)
	assert.InDelta(t, 3, round0[obama], 1e-9)

	require.Len(t, result.Rounds[1], 2)
	assert.Equal(t, gandi, result.Rounds[1][0].Candidate)
	assert.InDelta(t, 12, result.Rounds[1][0].Votes, 1e-9)
	assert.InDelta(t, 7, result.Rounds[1][1].Votes, 1e-9)
}

func TestIRVDeterminism(t *testing.T) {
	first := IRV(electorate, rankedFixture(), 10)
	second := IRV(electorate, rankedFixture(), 10)
	assert.Equal(t, first, second)
}

func TestIRVDoesNotMutateInputs(t *testing.T) {
	candidates := append([]Candidate(nil), electorate...)
	ballots := rankedFixture()
	IRV(candidates, ballots, 10)
	assert.Equal(t, electorate, candidates)
	assert.Equal(t, rankedFixture(), ballots)
}

func TestIRVImmediateMajority(t *testing.T) {
	ballots := []RankedBallot{
		Ranked(gandi, jesus),
		Ranked(gandi, trump),
		Ranked(gandi, obama),
		Ranked(jesus, gandi),
	}
	result := IRV(electorate, ballots, 0)
	assert.Equal(t, gandi, result.Winner)
	assert.Len(t, result.Rounds, 1)
	assert.Zero(t, result.ExhaustedBallots)
}

func TestIRVTiedRankSplitsVote(t *testing.T) {
	ballots := []RankedBallot{
		{Rank{gandi, jesus}, Rank{trump}},
		Ranked(gandi),
		Ranked(obama),
	}
	result := IRV(electorate, ballots, 0)

	round0 := map[Candidate]float64{}
	for _, entry := range result.Rounds[0] {
		round0[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 1.5, round0[gandi], 1e-9)
	assert.InDelta(t, 0.5, round0[jesus], 1e-9)
	assert.InDelta(t, 1, round0[obama], 1e-9)
	// 1.5 of 3 exceeds floor(3/2) and wins outright.
	assert.Equal(t, gandi, result.Winner)
	assert.Len(t, result.Rounds, 1)
}

func TestIRVInvalidBallots(t *testing.T) {
	ballots := []RankedBallot{
		Ranked(gandi, jesus),
		Ranked(Candidate("Nobody")),
		{},
	}
	result := IRV(electorate, ballots, 0)
	assert.Equal(t, 2, result.InvalidBallots)
	assert.Equal(t, 1, result.ValidBallots)
	assert.Equal(t, gandi, result.Winner)
}

func TestIRVAllEliminated(t *testing.T) {
	// Two candidates, one vote each: a permanent tie eliminates everyone.
	ballots := []RankedBallot{
		Ranked(gandi),
		Ranked(jesus),
	}
	result := IRV([]Candidate{gandi, jesus}, ballots, 0)
	assert.Equal(t, NoWinner, result.Winner)
	assert.Len(t, string(result.Winner), 32)
}
