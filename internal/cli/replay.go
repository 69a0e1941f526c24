package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	TallyID  string // optional - specific tally only
}

// ReplayTallyResult holds the replay result for a single tally.
type ReplayTallyResult struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	StoredHash   string `json:"stored_hash"`
	ReplayedHash string `json:"replayed_hash,omitempty"`
	Rounds       int    `json:"rounds"`
	// Siblings counts other stored tallies with the same election hash.
	Siblings      int    `json:"siblings"`
	Deterministic bool   `json:"deterministic"`
	Error         string `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Tallies          []ReplayTallyResult `json:"tallies"`
	TotalTallies     int                 `json:"total_tallies"`
	AllDeterministic bool                `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-count stored tallies and verify determinism",
		Long: `Re-count every stored election and verify the result is reproduced.

Each tally is counted twice from its stored election and configuration.
Both runs must produce the result hash recorded when the tally was stored,
and every stored tally of the same election must agree on it.

Exit codes:
  0 - All tallies are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  stv replay --db ./stv.db
  stv replay --db ./stv.db --tally 0190a3b2-...
  stv replay --db ./stv.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Database = stringFromEnv(cmd, "db", EnvDB)
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (env "+EnvDB+")")
	cmd.Flags().StringVar(&opts.TallyID, "tally", "", "replay specific tally only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := opts.formatter(cmd)

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	// Get tally IDs to process
	var ids []string
	if opts.TallyID != "" {
		ids = []string{opts.TallyID}
	} else {
		ids, err = st.ListTallyIDs(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err)
		}
	}

	result := ReplayResult{
		Tallies:          make([]ReplayTallyResult, 0, len(ids)),
		TotalTallies:     len(ids),
		AllDeterministic: true,
	}

	logger := opts.logger(cmd)
	for _, id := range ids {
		tallyResult, err := replayTally(ctx, st, id, logger)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("tally %s: %w", id, err))
			}
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Errorf("replay tally %s: %w", id, err))
		}
		formatter.VerboseLog("Replayed tally %s: deterministic=%v", id, tallyResult.Deterministic)

		result.Tallies = append(result.Tallies, tallyResult)
		if !tallyResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter.Writer, result, opts.Verbose)
}

// replayTally re-counts one stored tally twice and compares the result
// hash against the stored one and against its siblings. Only store
// failures are returned as errors; counting failures mark the tally
// non-deterministic.
func replayTally(ctx context.Context, st *store.Store, id string, logger *slog.Logger) (ReplayTallyResult, error) {
	rec, err := st.ReadTally(ctx, id)
	if err != nil {
		return ReplayTallyResult{}, err
	}

	out := ReplayTallyResult{
		ID:         rec.ID,
		Title:      rec.Election.Title,
		StoredHash: rec.ResultHash,
		Rounds:     len(rec.Result.Rounds),
	}

	eng, err := engine.NewFromConfig(rec.Config, engine.WithLogger(logger))
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}
	_, hash, err := eng.VerifyDeterminism(rec.Election)
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}
	out.ReplayedHash = hash
	out.Deterministic = hash == rec.ResultHash
	if !out.Deterministic {
		out.Error = fmt.Sprintf("result hash %s does not match stored %s", hash, rec.ResultHash)
		return out, nil
	}

	siblings, err := st.FindByElectionHash(ctx, rec.ElectionHash)
	if err != nil {
		return ReplayTallyResult{}, err
	}
	for _, sibling := range siblings {
		if sibling == rec.ID {
			continue
		}
		out.Siblings++
		other, err := st.ReadTally(ctx, sibling)
		if err != nil {
			return ReplayTallyResult{}, err
		}
		if other.ResultHash != rec.ResultHash {
			out.Deterministic = false
			out.Error = fmt.Sprintf("tally %s counted the same election to result hash %s", other.ID, other.ResultHash)
			return out, nil
		}
	}
	return out, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeGeneric,
			Message: "determinism verification failed",
		}
	}

	if err := formatter.encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, result ReplayResult, verbose bool) error {
	if result.TotalTallies == 0 {
		fmt.Fprintln(w, "No tallies found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d tally(ies)\n", result.TotalTallies)
	fmt.Fprintln(w)

	for _, t := range result.Tallies {
		status := "✓"
		if !t.Deterministic {
			status = "✗"
		}

		label := t.ID
		if t.Title != "" {
			label = fmt.Sprintf("%s (%s)", t.ID, t.Title)
		}
		fmt.Fprintf(w, "%s Tally: %s\n", status, label)

		if verbose {
			fmt.Fprintf(w, "  Stored hash:   %s\n", t.StoredHash)
			fmt.Fprintf(w, "  Replayed hash: %s\n", t.ReplayedHash)
			fmt.Fprintf(w, "  Siblings: %d\n", t.Siblings)
		}
		fmt.Fprintf(w, "  Rounds: %d\n", t.Rounds)

		if t.Error != "" {
			fmt.Fprintf(w, "  Warning: %s\n", t.Error)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All tallies verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}

// openStore opens the database named by --db, reporting a missing flag
// or an open failure as a command error.
func openStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	if path == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("--db or %s is required", EnvDB))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err)
	}
	return st, nil
}
