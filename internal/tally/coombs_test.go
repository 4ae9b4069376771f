package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRVCoombsFixture(t *testing.T) {
	result := IRVCoombs(electorate, rankedFixture(), 10)

	// The two-candidate ballot does not rank everyone and is invalid in
	// round 0. Obama holds the most last-preference votes (11) and is
	// eliminated; Gandi then takes 10 of 19 first preferences.
	assert.Equal(t, 1, result.InvalidBallots)
	assert.Equal(t, 19, result.ValidBallots)
	assert.Equal(t, 0, result.ExhaustedBallots)
	assert.Equal(t, gandi, result.Winner)
	require.Len(t, result.Rounds, 2)
	assert.True(t, result.MeetsQuorum)

	highest := map[Candidate]float64{}
	lowest := map[Candidate]float64{}
	for _, entry := range result.Rounds[0].Highest {
		highest[entry.Candidate] = entry.Votes
	}
	for _, entry := range result.Rounds[0].Lowest {
		lowest[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 8, highest[gandi], 1e-9)
	assert.InDelta(t, 6, highest[jesus], 1e-9)
	assert.InDelta(t, 3, highest[trump], 1e-9)
	assert.InDelta(t, 2, highest[obama], 1e-9)

	assert.InDelta(t, 11, lowest[obama], 1e-9)
	assert.InDelta(t, 3, lowest[trump], 1e-9)
	assert.InDelta(t, 3, lowest[jesus], 1e-9)
	assert.InDelta(t, 2, lowest[gandi], 1e-9)

	assert.Equal(t, gandi, result.Rounds[1].Highest[0].Candidate)
	assert.InDelta(t, 10, result.Rounds[1].Highest[0].Votes, 1e-9)
}

func TestIRVCoombsDeterminism(t *testing.T) {
	first := IRVCoombs(electorate, rankedFixture(), 10)
	second := IRVCoombs(electorate, rankedFixture(), 10)
	assert.Equal(t, first, second)
}

func TestIRVCoombsRequiresFullRanking(t *testing.T) {
	ballots := []RankedBallot{
		Ranked(gandi, jesus, trump, obama),
		Ranked(gandi, jesus), // partial: invalid in round 0
	}
	result := IRVCoombs(electorate, ballots, 0)
	assert.Equal(t, 1, result.InvalidBallots)
	assert.Equal(t, 1, result.ValidBallots)
}

func TestIRVCoombsTiedGroupCountsAsFull(t *testing.T) {
	// A tied group covers its members, so a normalized ballot passes the
	// round-0 completeness check.
	ballots := []RankedBallot{
		{Rank{gandi}, Rank{jesus, trump, obama}},
		{Rank{jesus}, Rank{gandi, trump, obama}},
		{Rank{gandi}, Rank{jesus, trump, obama}},
	}
	result := IRVCoombs(electorate, ballots, 0)
	assert.Equal(t, 0, result.InvalidBallots)
	assert.Equal(t, gandi, result.Winner)
}

func TestIRVCoombsFractionalLastRank(t *testing.T) {
	ballots := []RankedBallot{
		{Rank{gandi}, Rank{jesus}, Rank{trump, obama}},
		{Rank{jesus}, Rank{gandi}, Rank{trump, obama}},
	}
	result := IRVCoombs(electorate, ballots, 0)

	lowest := map[Candidate]float64{}
	for _, entry := range result.Rounds[0].Lowest {
		lowest[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 1, lowest[trump], 1e-9)
	assert.InDelta(t, 1, lowest[obama], 1e-9)
	assert.InDelta(t, 0, lowest[gandi], 1e-9)
}
