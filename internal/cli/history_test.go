package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stv/internal/ir"
)

func TestHistoryEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No tallies found in database.\n", out)
}

func TestHistoryText(t *testing.T) {
	dbPath := seedStore(t, "t-1", "t-2")

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Seq  ID   Title           Seats  Formula  Quota    Votes     Winners")
	assert.Contains(t, out, "1    t-1  Board election  2      droop    34.0000  101.0000  A, B")
	assert.Contains(t, out, "2    t-2  Board election")
}

func TestHistoryJSON(t *testing.T) {
	dbPath := seedStore(t, "t-1")

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err)

	_, data := decodeResponse[HistoryResult](t, out)
	assert.Equal(t, 1, data.Total)
	require.Len(t, data.Tallies, 1)
	assert.Equal(t, "t-1", data.Tallies[0].ID)
	assert.Equal(t, "droop", data.Tallies[0].Formula)
	assert.Equal(t, "34", data.Tallies[0].Quota)
	assert.Equal(t, []ir.CandidateID{"A", "B"}, data.Tallies[0].Winners)
}

func TestHistoryDatabaseFromEnvironment(t *testing.T) {
	t.Setenv(EnvDB, seedStore(t, "t-1"))

	out, _, err := execute(t, NewHistoryCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)
	assert.Contains(t, out, "t-1")
}
