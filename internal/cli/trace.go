package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	TallyID  string
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title,omitempty"`
	Config       ir.TallyConfig `json:"config"`
	ElectionHash string         `json:"election_hash"`
	ResultHash   string         `json:"result_hash"`
	Quota        string         `json:"quota"`
	TotalVotes   string         `json:"total_votes"`
	Exhausted    string         `json:"exhausted"`
	Rounds       []ir.Round     `json:"rounds"`
	Winners      []WinnerOutput `json:"winners"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the rounds of a stored tally",
		Long: `Show the round-by-round record of a stored tally.

Each round lists every candidate's total, the weight exhausted so far and
whether candidates were elected or one was eliminated.

Examples:
  stv trace --db ./stv.db --tally 0190a3b2-...
  stv trace --db ./stv.db --tally 0190a3b2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Database = stringFromEnv(cmd, "db", EnvDB)
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (env "+EnvDB+")")
	cmd.Flags().StringVar(&opts.TallyID, "tally", "", "tally ID to trace (required)")
	_ = cmd.MarkFlagRequired("tally")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.ReadTally(cmd.Context(), opts.TallyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("tally %s: %w", opts.TallyID, err))
		}
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err)
	}

	out := newCountOutput(rec)
	result := TraceResult{
		ID:           rec.ID,
		Title:        rec.Election.Title,
		Config:       rec.Config,
		ElectionHash: rec.ElectionHash,
		ResultHash:   rec.ResultHash,
		Quota:        rec.Result.Quota,
		TotalVotes:   rec.Result.TotalVotes,
		Exhausted:    rec.Result.Exhausted,
		Rounds:       out.Rounds,
		Winners:      out.Winners,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(formatter.Writer, rec.Election.Names(), result, opts.Verbose)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, names map[ir.CandidateID]string, result TraceResult, verbose bool) error {
	label := result.ID
	if result.Title != "" {
		label = fmt.Sprintf("%s (%s)", result.ID, result.Title)
	}
	fmt.Fprintf(w, "Trace for Tally: %s\n", label)
	fmt.Fprintf(w, "Rules: %d seat(s), %s quota, %s tie-break\n", result.Config.Seats, result.Config.Quota, result.Config.TieBreak)
	fmt.Fprintf(w, "Quota: %s  Valid votes: %s\n", decimal(result.Quota), decimal(result.TotalVotes))
	fmt.Fprintln(w)

	// Rounds section
	fmt.Fprintln(w, "=== Rounds ===")
	if err := renderRounds(w, names, result.Rounds); err != nil {
		return err
	}
	fmt.Fprintln(w)

	// Winners section
	fmt.Fprintln(w, "=== Winners ===")
	for _, winner := range result.Winners {
		how := fmt.Sprintf("round %d", winner.Round)
		if winner.ByExhaustion {
			how += ", by exhaustion"
		}
		fmt.Fprintf(w, "  %d. %s  %s (%s)\n", winner.Rank, winner.Name, decimal(winner.Votes), how)
	}

	if verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Hashes ===")
		fmt.Fprintf(w, "  Election: %s\n", truncateID(result.ElectionHash))
		fmt.Fprintf(w, "  Result:   %s\n", truncateID(result.ResultHash))
	}

	return nil
}

// truncateID shortens an ID or hash for display.
func truncateID(id string) string {
	if len(id) > 16 {
		return id[:16] + "..."
	}
	return id
}
