package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stv/internal/ballot"
	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/store"
)

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeResponse parses a JSON CLI envelope whose data has type T.
func decodeResponse[T any](t *testing.T, out string) (CLIResponse, T) {
	t.Helper()
	var envelope struct {
		CLIResponse
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope), out)
	return envelope.CLIResponse, envelope.Data
}

// seedStore counts testdata/board.yaml once per id into a new database
// and returns its path.
func seedStore(t *testing.T, ids ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "stv.db")

	loaded, err := ballot.Load("testdata/board.yaml", ballot.Options{})
	require.NoError(t, err)
	eng, err := engine.NewFromConfig(loaded.Config)
	require.NoError(t, err)
	result, err := eng.Tally(loaded.Election)
	require.NoError(t, err)
	rec, err := store.NewTallyRecord(loaded.Election, eng.Config(), result)
	require.NoError(t, err)

	st, err := store.Open(dbPath, store.WithIDGenerator(store.NewFixedGenerator(ids...)))
	require.NoError(t, err)
	defer st.Close()
	for range ids {
		_, err := st.WriteTally(context.Background(), rec)
		require.NoError(t, err)
	}
	return dbPath
}
