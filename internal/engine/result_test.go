package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/testutil"
)

// TestBuildResult_FillsRemainingSeatsByTotal tests winners by exhaustion
// after quota winners.
func TestBuildResult_FillsRemainingSeatsByTotal(t *testing.T) {
	election := testutil.NewElection("A", "B", "C", "D").
		Ballots("A", 6).
		Ballots("B", 2).
		Ballots("C", 3).
		Ballots("D", 1).
		Build()

	s, err := NewTallyState(election, 3, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)
	s.tabulate()

	a, _ := s.Candidate("A")
	s.elect(a, 1)
	s.snapshot(1, []ir.CandidateID{"A"}, "")

	result := BuildResult(s)
	assert.Equal(t, []ir.Winner{
		{Candidate: "A", Rank: 1, Votes: "6", Round: 1},
		{Candidate: "C", Rank: 2, Votes: "3", Round: 1, ByExhaustion: true},
		{Candidate: "B", Rank: 3, Votes: "2", Round: 1, ByExhaustion: true},
	}, result.Winners)
	assert.Equal(t, "12", result.TotalVotes)
	assert.Equal(t, "4", result.Quota)
	assert.Len(t, result.Rounds, 1)
}

// TestBuildResult_RoundsAreCopied tests that the result does not alias
// the state's round slice.
func TestBuildResult_RoundsAreCopied(t *testing.T) {
	election := testutil.NewElection("A", "B").
		Ballots("A", 2).
		Ballots("B", 1).
		Build()

	s, err := New(WithSeats(1)).Count(election)
	require.NoError(t, err)

	result := BuildResult(s)
	require.NotEmpty(t, result.Rounds)
	result.Rounds[0].Number = 99
	assert.Equal(t, 1, s.Rounds[0].Number)
}
