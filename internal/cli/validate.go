package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stv/internal/engine"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	TallyFlags
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Title      string `json:"title,omitempty"`
	Candidates int    `json:"candidates"`
	Ballots    int    `json:"ballots"`
	ValidVotes string `json:"valid_votes"`
	Seats      int    `json:"seats"`
	Quota      string `json:"quota"`
	Formula    string `json:"formula"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <election-file>",
		Short: "Validate an election without counting it",
		Long: `Validate an election file and its counting rules without counting.

Checks the file format, every ballot ranking, the candidate list and the
seat count, then reports the quota the count would use. Faster than count
for checking large ballot files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, opts, args[0])
		},
	}

	opts.TallyFlags.register(cmd)

	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, opts *ValidateOptions, path string) error {
	formatter := rootOpts.formatter(cmd)

	loadOpts, err := opts.loadOptions(cmd)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeInvalidInput, err)
	}
	loaded, err := LoadElection(path, loadOpts)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %s election from %s", loaded.Format, path)

	cfg, err := opts.resolve(cmd, loaded.Config)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeInvalidInput, err)
	}
	// resolve has already parsed both names.
	formula, _ := engine.ParseQuotaFormula(cfg.Quota)
	tieBreak, _ := engine.ParseTieBreak(cfg.TieBreak)

	state, err := engine.NewTallyState(loaded.Election, cfg.Seats, formula, tieBreak)
	if err != nil {
		return formatter.TallyFailure(err)
	}

	result := ValidationResult{
		Valid:      true,
		Title:      loaded.Election.Title,
		Candidates: len(state.Candidates),
		Ballots:    len(loaded.Election.Ballots),
		ValidVotes: state.Total.RatString(),
		Seats:      state.Seats,
		Quota:      state.Quota.String(),
		Formula:    string(state.Quota.Formula),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ Election valid")
	fmt.Fprintf(w, "  Candidates:  %d\n", result.Candidates)
	fmt.Fprintf(w, "  Ballots:     %d (%s valid)\n", result.Ballots, decimal(result.ValidVotes))
	fmt.Fprintf(w, "  Seats:       %d\n", result.Seats)
	fmt.Fprintf(w, "  Quota:       %s (%s)\n", decimal(result.Quota), result.Formula)
	return nil
}
