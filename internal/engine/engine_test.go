package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/logging"
	"github.com/roach88/stv/internal/testutil"
)

// TestEngine_New tests defaults and options.
func TestEngine_New(t *testing.T) {
	e := New()
	assert.Equal(t, ir.TallyConfig{Seats: 4, Quota: "droop", TieBreak: "lexical"}, e.Config())

	e = New(WithSeats(2), WithQuota(QuotaHare), WithTieBreak(TieBreakBackward))
	assert.Equal(t, ir.TallyConfig{Seats: 2, Quota: "hare", TieBreak: "backward"}, e.Config())
}

// TestNewFromConfig tests parsing a serialized configuration.
func TestNewFromConfig(t *testing.T) {
	e, err := NewFromConfig(ir.TallyConfig{Seats: 3})
	require.NoError(t, err)
	assert.Equal(t, ir.TallyConfig{Seats: 3, Quota: "droop", TieBreak: "lexical"}, e.Config())

	_, err = NewFromConfig(ir.TallyConfig{Seats: 3, Quota: "bogus"})
	assert.True(t, IsInvalidInput(err))

	_, err = NewFromConfig(ir.TallyConfig{Seats: 3, TieBreak: "coin-flip"})
	assert.True(t, IsInvalidInput(err))
}

// TestTally_TwoSeatsBothReachQuota tests A>B>C>D×60 / B>A>C>D×40 with two seats.
func TestTally_TwoSeatsBothReachQuota(t *testing.T) {
	election := testutil.NewElection("A", "B", "C", "D").
		Ballots("A>B>C>D", 60).
		Ballots("B>A>C>D", 40).
		Build()

	result, err := New(WithSeats(2)).Tally(election)
	require.NoError(t, err)

	assert.Equal(t, "34", result.Quota)
	assert.Equal(t, "100", result.TotalVotes)
	assert.Equal(t, []ir.Winner{
		{Candidate: "A", Rank: 1, Votes: "60", Round: 1},
		{Candidate: "B", Rank: 2, Votes: "40", Round: 1},
	}, result.Winners)
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, []ir.CandidateID{"A", "B"}, result.Rounds[0].Elected)
}

// TestTally_SingleSeatEliminationCascade tests repeated eliminations ending
// with the last standing candidate reaching the quota in a round of its own.
func TestTally_SingleSeatEliminationCascade(t *testing.T) {
	election := testutil.NewElection("A", "B", "C", "D").
		Ballots("A>B", 4).
		Ballots("B>C", 3).
		Ballots("C>B", 2).
		Ballots("D>C", 1).
		Build()

	result, err := New(WithSeats(1)).Tally(election)
	require.NoError(t, err)

	assert.Equal(t, "6", result.Quota)
	assert.Equal(t, []ir.CandidateID{"D", "C", "A"}, result.EliminationOrder())
	assert.Equal(t, []ir.Winner{
		{Candidate: "B", Rank: 1, Votes: "9", Round: 4},
	}, result.Winners)
	// D's ballot exhausts once both D and C are out.
	assert.Equal(t, "1", result.Exhausted)

	require.Len(t, result.Rounds, 4)
	assert.Equal(t, []ir.CandidateTally{
		{Candidate: "A", Votes: "4", Status: ir.StatusStanding},
		{Candidate: "B", Votes: "3", Status: ir.StatusStanding},
		{Candidate: "C", Votes: "3", Status: ir.StatusEliminated},
		{Candidate: "D", Votes: "0", Status: ir.StatusEliminated},
	}, result.Rounds[1].Tallies)

	// B alone is standing but holds 9 >= 6, so the quota elects it before
	// the exhaustion rule applies.
	assert.Equal(t, []ir.CandidateID{"B"}, result.Rounds[3].Elected)
	assert.Equal(t, []ir.CandidateTally{
		{Candidate: "A", Votes: "0", Status: ir.StatusEliminated},
		{Candidate: "B", Votes: "9", Status: ir.StatusElected},
		{Candidate: "C", Votes: "0", Status: ir.StatusEliminated},
		{Candidate: "D", Votes: "0", Status: ir.StatusEliminated},
	}, result.Rounds[3].Tallies)
}

// TestTally_SurplusTransfer tests fractional surplus transfer.
func TestTally_SurplusTransfer(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A>C", 4).
		Ballots("A>B", 4).
		Ballots("B", 3).
		Ballots("C", 1).
		Build()

	result, err := New(WithSeats(2)).Tally(election)
	require.NoError(t, err)

	// Quota 5; A's surplus of 3 leaves at 3/8 per ballot.
	assert.Equal(t, "5", result.Quota)
	require.Len(t, result.Rounds, 2)

	assert.Equal(t, []ir.CandidateTally{
		{Candidate: "A", Votes: "8", Status: ir.StatusElected},
		{Candidate: "B", Votes: "3", Status: ir.StatusStanding},
		{Candidate: "C", Votes: "1", Status: ir.StatusStanding},
	}, result.Rounds[0].Tallies)

	assert.Equal(t, []ir.CandidateTally{
		{Candidate: "A", Votes: "5", Status: ir.StatusElected},
		{Candidate: "B", Votes: "9/2", Status: ir.StatusStanding},
		{Candidate: "C", Votes: "5/2", Status: ir.StatusEliminated},
	}, result.Rounds[1].Tallies)

	assert.Equal(t, []ir.Winner{
		{Candidate: "A", Rank: 1, Votes: "8", Round: 1},
		{Candidate: "B", Rank: 2, Votes: "9/2", Round: 2, ByExhaustion: true},
	}, result.Winners)
	assert.Equal(t, "5/2", result.Exhausted)
}

// TestTally_SeatsAtLeastCandidates tests election without any round.
func TestTally_SeatsAtLeastCandidates(t *testing.T) {
	election := testutil.NewElection("A", "B").
		Ballots("A", 1).
		Ballots("B", 2).
		Build()

	result, err := New(WithSeats(3)).Tally(election)
	require.NoError(t, err)

	assert.Empty(t, result.Rounds)
	assert.Equal(t, []ir.Winner{
		{Candidate: "B", Rank: 1, Votes: "2", Round: 0, ByExhaustion: true},
		{Candidate: "A", Rank: 2, Votes: "1", Round: 0, ByExhaustion: true},
	}, result.Winners)
}

// TestTally_ElectionsCappedAtRemainingSeats tests that more candidates
// reaching quota than seats remain elects only the highest.
func TestTally_ElectionsCappedAtRemainingSeats(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A", 5).
		Ballots("B", 4).
		Ballots("C", 3).
		Build()

	// Imperiali quota for 12 votes and 1 seat is 4: both A and B reach it.
	result, err := New(WithSeats(1), WithQuota(QuotaImperiali)).Tally(election)
	require.NoError(t, err)

	assert.Equal(t, "4", result.Quota)
	assert.Equal(t, []ir.CandidateID{"A"}, result.WinnerIDs())
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, []ir.CandidateID{"A"}, result.Rounds[0].Elected)
}

// TestTally_TieBreakPolicies tests that the policy decides which tied
// candidate is eliminated.
func TestTally_TieBreakPolicies(t *testing.T) {
	election := testutil.NewElection("A", "B", "C", "D").
		Ballots("C", 5).
		Ballots("B", 3).
		Ballots("A", 2).
		Ballots("D>A", 1).
		Build()

	// After D goes, A and B are level on 3. Lexically A has precedence so
	// B falls; looking backward B led A in round 1 so A falls.
	lexical, err := New(WithSeats(1)).Tally(election)
	require.NoError(t, err)
	assert.Equal(t, []ir.CandidateID{"D", "B", "A"}, lexical.EliminationOrder())
	assert.Equal(t, []ir.CandidateID{"C"}, lexical.WinnerIDs())

	backward, err := New(WithSeats(1), WithTieBreak(TieBreakBackward)).Tally(election)
	require.NoError(t, err)
	assert.Equal(t, []ir.CandidateID{"D", "A", "B"}, backward.EliminationOrder())
	assert.Equal(t, []ir.CandidateID{"C"}, backward.WinnerIDs())
}

// TestTally_LexicalTieElectsLowerIDFirst tests ordering of simultaneous
// elections with equal totals.
func TestTally_LexicalTieElectsLowerIDFirst(t *testing.T) {
	election := testutil.NewElection("B", "A", "C").
		Ballots("B", 4).
		Ballots("A", 4).
		Ballots("C", 1).
		Build()

	result, err := New(WithSeats(2)).Tally(election)
	require.NoError(t, err)
	assert.Equal(t, []ir.CandidateID{"A", "B"}, result.WinnerIDs())
}

// TestTally_HagenbachBischoffIsExclusive tests that reaching exactly the
// quota does not elect.
func TestTally_HagenbachBischoffIsExclusive(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A", 3).
		Ballots("B", 2).
		Ballots("C>B", 1).
		Build()

	// Quota 6/2 = 3. A sits exactly on it, so C is eliminated first.
	result, err := New(WithSeats(1), WithQuota(QuotaHagenbachBischoff)).Tally(election)
	require.NoError(t, err)

	require.NotEmpty(t, result.Rounds)
	assert.Equal(t, ir.CandidateID("C"), result.Rounds[0].Eliminated)
	assert.Empty(t, result.Rounds[0].Elected)
}

// TestTally_EmptyBallotsExcludedFromTotal tests that ballots with no
// preference do not count toward the quota.
func TestTally_EmptyBallotsExcludedFromTotal(t *testing.T) {
	election := testutil.NewElection("A", "B").
		Ballots("A", 3).
		Ballots("B", 1).
		Ballots("", 5).
		Build()

	result, err := New(WithSeats(1)).Tally(election)
	require.NoError(t, err)
	assert.Equal(t, "4", result.TotalVotes)
	assert.Equal(t, "3", result.Quota)
	assert.Equal(t, "0", result.Exhausted)
	assert.Equal(t, []ir.CandidateID{"A"}, result.WinnerIDs())
}

// TestTally_InvalidInput tests validation failures.
func TestTally_InvalidInput(t *testing.T) {
	valid := testutil.NewElection("A", "B").Ballots("A>B", 1).Build()

	tests := []struct {
		name     string
		election ir.Election
		seats    int
		contains string
	}{
		{"zero seats", valid, 0, "seats must be at least 1"},
		{"negative seats", valid, -1, "seats must be at least 1"},
		{"no ballots", testutil.NewElection("A").Build(), 1, "no ballots"},
		{"no candidates", ir.Election{Ballots: []ir.Ballot{{"A"}}}, 1, "no candidates"},
		{"unknown candidate", testutil.NewElection("A").Ballots("A>Z", 1).Build(), 1, "unknown candidate"},
		{"repeated preference", testutil.NewElection("A", "B").Ballots("A>B>A", 1).Build(), 1, "more than once"},
		{"duplicate candidate", testutil.NewElection("A", "A").Ballots("A", 1).Build(), 1, "duplicate candidate id"},
		{"only empty ballots", testutil.NewElection("A").Ballots("", 3).Build(), 1, "total valid votes must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithSeats(tt.seats)).Tally(tt.election)
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

// TestTally_UnknownCandidateDetails tests that the offending ballot is
// identified.
func TestTally_UnknownCandidateDetails(t *testing.T) {
	election := testutil.NewElection("A").
		Ballots("A", 2).
		Ballots("A>Z", 1).
		Build()

	_, err := New(WithSeats(1)).Tally(election)
	var te *TallyError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ir.CandidateID("Z"), te.Candidate)
	assert.Equal(t, "2", te.Details["ballot"])
}

// TestTally_DoesNotMutateElection tests that the input is left untouched.
func TestTally_DoesNotMutateElection(t *testing.T) {
	election := testutil.NewElection("A", "B", "C").
		Ballots("A>B>C", 5).
		Ballots("C>B", 2).
		Build()
	before := testutil.NewElection("A", "B", "C").
		Ballots("A>B>C", 5).
		Ballots("C>B", 2).
		Build()

	_, err := New(WithSeats(2)).Tally(election)
	require.NoError(t, err)
	assert.Equal(t, before, election)
}

// TestCount_LogsRounds tests the round-level diagnostics.
func TestCount_LogsRounds(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug)

	election := testutil.NewElection("A", "B", "C").
		Ballots("A", 3).
		Ballots("B", 2).
		Ballots("C>B", 1).
		Build()

	state, err := New(WithSeats(1), WithLogger(logger)).Count(election)
	require.NoError(t, err)
	assert.True(t, state.Complete)

	out := buf.String()
	assert.Contains(t, out, "tally started")
	assert.Contains(t, out, "round complete")
	assert.Contains(t, out, "eliminated=C")
	assert.Contains(t, out, "tally complete")
}
