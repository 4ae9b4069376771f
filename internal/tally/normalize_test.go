package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizeFixture() ([]RankedBallot, []Candidate) {
	albert, billy, cindy := Candidate("Albert"), Candidate("Billy"), Candidate("Cindy")
	dilbert, edmund, sam := Candidate("Dilbert"), Candidate("Edmund"), Candidate("Sam")
	ballots := []RankedBallot{
		Ranked(albert, cindy, billy),
		Ranked(billy, dilbert, albert),
		Ranked(dilbert, billy, albert),
		Ranked(billy, dilbert),
		Ranked(edmund, dilbert, billy),
		Ranked(edmund, dilbert, billy, sam),
		Ranked(sam, edmund),
		Ranked(edmund, sam, albert),
		Ranked(edmund, sam),
		Ranked(edmund),
		Ranked(edmund),
		{Rank{dilbert, cindy}, Rank{edmund}},
	}
	return ballots, []Candidate{albert, billy, cindy}
}

func TestNormalizeCollectsWriteIns(t *testing.T) {
	ballots, candidates := normalizeFixture()
	_, allCandidates := NormalizeRankedBallots(ballots, candidates, "")

	assert.Equal(t, []Candidate{
		"Albert", "Billy", "Cindy", "Dilbert", "Edmund", "Sam",
	}, allCandidates, "write-ins append in first-seen order")
}

func TestNormalizeAppendsUnrankedGroup(t *testing.T) {
	ballots, candidates := normalizeFixture()
	normalized, _ := NormalizeRankedBallots(ballots, candidates, "")
	require.Len(t, normalized, len(ballots))

	// [Albert, Cindy, Billy] is missing Dilbert, Edmund, Sam; they arrive
	// as one tied final rank.
	first := normalized[0]
	require.Len(t, first, 4)
	assert.Equal(t, Rank{"Albert"}, first[0])
	assert.Equal(t, Rank{"Dilbert", "Edmund", "Sam"}, first[3])

	// [Edmund] is missing everyone else.
	tenth := normalized[9]
	require.Len(t, tenth, 2)
	assert.Equal(t, Rank{"Edmund"}, tenth[0])
	assert.Len(t, tenth[1], 5)
}

func TestNormalizeExplicitPlaceholderPosition(t *testing.T) {
	ballots := []RankedBallot{
		{Rank{"Albert"}, Rank{DefaultPlaceholder}, Rank{"Billy"}},
	}
	normalized, _ := NormalizeRankedBallots(ballots, []Candidate{"Albert", "Billy", "Cindy"}, "")

	// Cindy is the only unranked candidate and lands where the voter put
	// the placeholder: between Albert and Billy.
	require.Len(t, normalized[0], 3)
	assert.Equal(t, Rank{"Albert"}, normalized[0][0])
	assert.Equal(t, Rank{"Cindy"}, normalized[0][1])
	assert.Equal(t, Rank{"Billy"}, normalized[0][2])
}

func TestNormalizeFullBallotUnchanged(t *testing.T) {
	ballots := []RankedBallot{Ranked("Albert", "Billy", "Cindy")}
	normalized, _ := NormalizeRankedBallots(ballots, []Candidate{"Albert", "Billy", "Cindy"}, "")
	assert.Equal(t, Ranked("Albert", "Billy", "Cindy"), normalized[0],
		"a ballot ranking every candidate gains no empty group")
}

func TestNormalizeIdempotent(t *testing.T) {
	ballots, candidates := normalizeFixture()
	once, onceCandidates := NormalizeRankedBallots(ballots, candidates, "")
	twice, twiceCandidates := NormalizeRankedBallots(once, onceCandidates, "")
	assert.Equal(t, once, twice)
	assert.Equal(t, onceCandidates, twiceCandidates)
}

func TestNormalizeDoesNotMutateInputs(t *testing.T) {
	ballots, candidates := normalizeFixture()
	wantBallots, wantCandidates := normalizeFixture()
	NormalizeRankedBallots(ballots, candidates, "")
	assert.Equal(t, wantBallots, ballots)
	assert.Equal(t, wantCandidates, candidates)
}

func TestNormalizeThenIRV(t *testing.T) {
	ballots, candidates := normalizeFixture()
	normalized, allCandidates := NormalizeRankedBallots(ballots, candidates, "")
	result := IRV(allCandidates, normalized, 3)

	assert.Equal(t, 0, result.InvalidBallots)
	assert.Equal(t, len(ballots), result.ValidBallots)
	assert.NotEqual(t, NoWinner, result.Winner)
	assert.True(t, result.MeetsQuorum)
}

func TestNormalizeCustomPlaceholder(t *testing.T) {
	token := Candidate("rest")
	ballots := []RankedBallot{
		{Rank{"A"}, Rank{token}},
	}
	normalized, _ := NormalizeRankedBallots(ballots, []Candidate{"A", "B"}, token)
	require.Len(t, normalized[0], 2)
	assert.Equal(t, Rank{"B"}, normalized[0][1])
}
