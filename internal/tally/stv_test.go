package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSTVDroopQuota(t *testing.T) {
	// 15 ballots, 2 seats: quota = floor(15/3) + 1 = 6.
	ballots := make([]RankedBallot, 15)
	for i := range ballots {
		ballots[i] = Ranked(gandi)
	}
	result := STVDroop([]Candidate{gandi, jesus, obama}, ballots, 2, 0)
	assert.Equal(t, 6, result.Quota)
}

func TestSTVDroopSurplusTransfer(t *testing.T) {
	a, b, c := Candidate("A"), Candidate("B"), Candidate("C")
	candidates := []Candidate{a, b, c}

	// 15 ballots, 2 seats, quota 6. A holds 8 first preferences; the
	// surplus of 2 transfers to C at weight 1/4, lifting C from 3 to 5.
	// B's 4 ballots have no later preference and exhaust when B is
	// eliminated, leaving C to take the final seat uncontested.
	ballots := make([]RankedBallot, 0, 15)
	for i := 0; i < 8; i++ {
		ballots = append(ballots, Ranked(a, c))
	}
	for i := 0; i < 4; i++ {
		ballots = append(ballots, Ranked(b))
	}
	for i := 0; i < 3; i++ {
		ballots = append(ballots, Ranked(c))
	}

	result := STVDroop(candidates, ballots, 2, 5)

	assert.Equal(t, []Candidate{a, c}, result.Winners)
	assert.Equal(t, 15, result.ValidBallots)
	assert.Equal(t, 0, result.InvalidBallots)
	assert.Equal(t, 4, result.ExhaustedBallots)
	assert.True(t, result.MeetsQuorum)

	require.GreaterOrEqual(t, len(result.Rounds), 2)
	round0 := map[Candidate]float64{}
	for _, entry := range result.Rounds[0] {
		round0[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 8, round0[a], 1e-9)
	assert.InDelta(t, 4, round0[b], 1e-9)
	assert.InDelta(t, 3, round0[c], 1e-9)

	round1 := map[Candidate]float64{}
	for _, entry := range result.Rounds[1] {
		round1[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 5, round1[c], 1e-9, "C carries 3 + 8×(2/8) after the transfer")
	assert.InDelta(t, 4, round1[b], 1e-9)
}

func TestSTVDroopTiedFirstRankWeight(t *testing.T) {
	a, b, c := Candidate("A"), Candidate("B"), Candidate("C")

	// 5 ballots, 1 seat, quota = floor(5/2)+1 = 3. A is seated with 3.5
	// first-preference votes: three whole ballots plus half of a tied A/B
	// rank.
	ballots := []RankedBallot{
		Ranked(a, c),
		Ranked(a, c),
		Ranked(a, c),
		{Rank{a, b}},
		Ranked(b),
	}
	result := STVDroop([]Candidate{a, b, c}, ballots, 1, 0)
	assert.Equal(t, []Candidate{a}, result.Winners)

	round0 := map[Candidate]float64{}
	for _, entry := range result.Rounds[0] {
		round0[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 3.5, round0[a], 1e-9)
	assert.InDelta(t, 1.5, round0[b], 1e-9)
}

func TestSTVDroopEliminationPath(t *testing.T) {
	a, b, c, d := Candidate("A"), Candidate("B"), Candidate("C"), Candidate("D")

	// 10 ballots, 2 seats, quota 4. Nobody reaches quota in round 0, so D
	// (the unique minimum) is eliminated and its ballot transfers to B,
	// lifting B to the quota.
	ballots := []RankedBallot{
		Ranked(a, b), Ranked(a, b), Ranked(a, b),
		Ranked(b, c), Ranked(b, c), Ranked(b, c),
		Ranked(c, a), Ranked(c, a), Ranked(c, a),
		Ranked(d, b),
	}
	result := STVDroop([]Candidate{a, b, c, d}, ballots, 2, 0)

	require.GreaterOrEqual(t, len(result.Rounds), 2)
	round1 := map[Candidate]float64{}
	for _, entry := range result.Rounds[1] {
		round1[entry.Candidate] = entry.Votes
	}
	assert.InDelta(t, 4, round1[b], 1e-9, "D's ballot transfers to B")
	assert.Contains(t, result.Winners, b)
}

func TestSTVDroopSeatsRemainder(t *testing.T) {
	a, b := Candidate("A"), Candidate("B")
	ballots := []RankedBallot{Ranked(a), Ranked(b)}
	result := STVDroop([]Candidate{a, b}, ballots, 2, 0)
	assert.ElementsMatch(t, []Candidate{a, b}, result.Winners, "as many candidates as seats are seated outright")
}

func TestSTVDroopInvalidBallots(t *testing.T) {
	a, b := Candidate("A"), Candidate("B")
	ballots := []RankedBallot{
		Ranked(a),
		Ranked(Candidate("Nobody")),
		{},
		Ranked(b),
	}
	result := STVDroop([]Candidate{a, b}, ballots, 1, 0)
	assert.Equal(t, 2, result.InvalidBallots)
	assert.Equal(t, 2, result.ValidBallots)
}

func TestSTVDroopDeterminism(t *testing.T) {
	a, b, c := Candidate("A"), Candidate("B"), Candidate("C")
	ballots := []RankedBallot{
		Ranked(a, b, c),
		Ranked(b, c, a),
		Ranked(c, a, b),
		Ranked(a, c, b),
		Ranked(b, a, c),
	}
	first := STVDroop([]Candidate{a, b, c}, ballots, 2, 0)
	second := STVDroop([]Candidate{a, b, c}, ballots, 2, 0)
	assert.Equal(t, first, second)
}
