package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/stv/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// HistoryResult holds the stored tally listing.
type HistoryResult struct {
	Tallies []store.TallySummary `json:"tallies"`
	Total   int                  `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored tallies",
		Long: `List every tally stored in the database, oldest first.

Examples:
  stv history --db ./stv.db
  stv history --db ./stv.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Database = stringFromEnv(cmd, "db", EnvDB)
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (env "+EnvDB+")")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	tallies, err := st.ListTallies(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err)
	}

	result := HistoryResult{Tallies: tallies, Total: len(tallies)}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputHistoryText(formatter.Writer, result, opts.Verbose)
}

func outputHistoryText(w io.Writer, result HistoryResult, verbose bool) error {
	if result.Total == 0 {
		fmt.Fprintln(w, "No tallies found in database.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "Seq\tID\tTitle\tSeats\tFormula\tQuota\tVotes\tWinners"
	if verbose {
		header += "\tResult hash"
	}
	fmt.Fprintln(tw, header)
	for _, t := range result.Tallies {
		winners := make([]string, len(t.Winners))
		for i, id := range t.Winners {
			winners[i] = string(id)
		}
		row := fmt.Sprintf("%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s",
			t.Seq, t.ID, t.Title, t.Seats, t.Formula, decimal(t.Quota), decimal(t.TotalVotes), strings.Join(winners, ", "))
		if verbose {
			row += "\t" + truncateID(t.ResultHash)
		}
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}
