package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/testutil"
)

// TestNewTallyState_DealsFirstPreferences tests the initial assignment.
func TestNewTallyState_DealsFirstPreferences(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A>B", 2).
		Ballots("C", 1).
		Ballots("", 1).
		Build()

	s, err := NewTallyState(election, 1, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)

	assert.Equal(t, "3", s.Total.RatString())
	assert.Equal(t, "2", s.Quota.String())

	a, ok := s.Candidate("A")
	require.True(t, ok)
	assert.Len(t, a.portions, 2)
	b, _ := s.Candidate("B")
	assert.Empty(t, b.portions)
	c, _ := s.Candidate("C")
	assert.Len(t, c.portions, 1)

	assert.Equal(t, 0, s.Accounted().Cmp(s.Total))
	assert.False(t, s.Complete)
}

// TestTallyState_PlaceSkipsNonStanding tests that transfers skip elected
// and eliminated candidates and exhaust when nothing is left.
func TestTallyState_PlaceSkipsNonStanding(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A>B>C", 1).
		Build()

	s, err := NewTallyState(election, 1, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)

	b, _ := s.Candidate("B")
	b.Status = ir.StatusEliminated

	half := big.NewRat(1, 2)
	s.place(Portion{Ballot: 0, Cursor: 1, Weight: half})
	c, _ := s.Candidate("C")
	require.Len(t, c.portions, 1)
	assert.Equal(t, 2, c.portions[0].Cursor)

	c.Status = ir.StatusElected
	s.place(Portion{Ballot: 0, Cursor: 1, Weight: half})
	assert.Equal(t, "1/2", s.Exhausted.RatString())
}

// TestTallyState_TransferSurplusKeepsQuota tests the retained total.
func TestTallyState_TransferSurplusKeepsQuota(t *testing.T) {
	election := testutil.NewElection("A", "B").
		Ballots("A>B", 3).
		Ballots("B", 1).
		Build()

	s, err := NewTallyState(election, 1, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)
	s.tabulate()

	a, _ := s.Candidate("A")
	s.elect(a, 1)
	s.transferSurplus(a)

	// Quota 3 for 4 votes and 1 seat: A holds exactly the quota, nothing moves.
	assert.Equal(t, "3", a.Votes.RatString())
	assert.Equal(t, "3", a.ElectedVotes.RatString())
	b, _ := s.Candidate("B")
	assert.Len(t, b.portions, 1)
	assert.Equal(t, 0, s.Accounted().Cmp(s.Total))
}

// TestTallyState_Done tests the termination rule.
func TestTallyState_Done(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A", 1).
		Build()

	s, err := NewTallyState(election, 2, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)
	assert.False(t, s.done())

	c, _ := s.Candidate("C")
	s.eliminate(c)
	assert.True(t, s.done(), "two standing for two seats")

	s2, err := NewTallyState(election, 1, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)
	a, _ := s2.Candidate("A")
	s2.elect(a, 1)
	assert.True(t, s2.done(), "every seat filled")
	assert.Equal(t, 1, s2.ElectedCount())
	assert.Equal(t, []*CandidateState{a}, s2.Elected())
}

// TestTallyState_FinishedChecksQuotaFirst tests that a standing candidate
// at or above the quota stops the exhaustion rule from ending the count.
func TestTallyState_FinishedChecksQuotaFirst(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A", 3).
		Ballots("B", 1).
		Build()

	s, err := NewTallyState(election, 2, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)
	c, _ := s.Candidate("C")
	s.eliminate(c)
	s.tabulate()

	// Quota is 2: A holds 3, so A is elected by quota first.
	require.True(t, s.done())
	assert.False(t, s.finished())
	a, _ := s.Candidate("A")
	assert.Equal(t, []*CandidateState{a}, s.quotaReached())

	round, err := s.step(1)
	require.NoError(t, err)
	assert.Equal(t, []ir.CandidateID{"A"}, round.Elected)

	// B is below the quota and fills the last seat by exhaustion.
	s.tabulate()
	assert.Empty(t, s.quotaReached())
	assert.True(t, s.finished())
}

// TestTallyState_StepStallsWithoutStanding tests the no-progress guard.
func TestTallyState_StepStallsWithoutStanding(t *testing.T) {
	election := testutil.NewElection("A").
		Ballots("A", 1).
		Build()

	s, err := NewTallyState(election, 1, QuotaDroop, TieBreakLexical)
	require.NoError(t, err)
	a, _ := s.Candidate("A")
	a.Status = ir.StatusEliminated

	_, err = s.step(1)
	require.Error(t, err)
	assert.True(t, IsStalled(err))
}
