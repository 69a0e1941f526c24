package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stv/internal/ir"
)

func TestReadTally_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(t)
	stored, err := s.WriteTally(ctx, rec)
	require.NoError(t, err)

	got, err := s.ReadTally(ctx, stored.ID)
	require.NoError(t, err)

	assert.Equal(t, stored, got)

	// The stored result reproduces the stored hash.
	hash, err := ir.ResultHash(got.Result)
	require.NoError(t, err)
	assert.Equal(t, got.ResultHash, hash)

	electionHash, err := ir.ElectionHash(got.Election, got.Config)
	require.NoError(t, err)
	assert.Equal(t, got.ElectionHash, electionHash)
}

func TestReadTally_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadTally(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadRounds(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(t)
	stored, err := s.WriteTally(ctx, rec)
	require.NoError(t, err)

	rounds, err := s.ReadRounds(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Result.Rounds, rounds)

	_, err = s.ReadRounds(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTallies(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("b", "a")))
	ctx := context.Background()

	empty, err := s.ListTallies(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	rec := sampleRecord(t)
	_, err = s.WriteTally(ctx, rec)
	require.NoError(t, err)
	_, err = s.WriteTally(ctx, rec)
	require.NoError(t, err)

	list, err := s.ListTallies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Insertion order, not ID order.
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, int64(1), list[0].Seq)
	assert.Equal(t, "Board", list[0].Title)
	assert.Equal(t, 2, list[0].Seats)
	assert.Equal(t, "droop", list[0].Formula)
	assert.Equal(t, rec.Result.Quota, list[0].Quota)
	assert.Equal(t, rec.Result.WinnerIDs(), list[0].Winners)
}

func TestFindByElectionHash(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("x", "y")))
	ctx := context.Background()

	rec := sampleRecord(t)
	_, err := s.WriteTally(ctx, rec)
	require.NoError(t, err)
	_, err = s.WriteTally(ctx, rec)
	require.NoError(t, err)

	ids, err := s.FindByElectionHash(ctx, rec.ElectionHash)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ids)

	all, err := s.ListTallyIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, all)

	none, err := s.FindByElectionHash(ctx, "0000")
	require.NoError(t, err)
	assert.Empty(t, none)
}
