package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/store"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	TallyFlags
	DBPath     string
	ShowRounds bool
}

// CountOutput is the JSON payload of a successful count.
type CountOutput struct {
	ID           string         `json:"id,omitempty"`
	Title        string         `json:"title,omitempty"`
	Config       ir.TallyConfig `json:"config"`
	ElectionHash string         `json:"election_hash"`
	ResultHash   string         `json:"result_hash"`
	Quota        string         `json:"quota"`
	TotalVotes   string         `json:"total_votes"`
	Exhausted    string         `json:"exhausted"`
	Winners      []WinnerOutput `json:"winners"`
	Rounds       []ir.Round     `json:"rounds"`
}

// WinnerOutput is a winner with its display name.
type WinnerOutput struct {
	ir.Winner
	Name string `json:"name"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{}

	cmd := &cobra.Command{
		Use:   "count <election-file>",
		Short: "Count an election",
		Long: `Count an election by the Single Transferable Vote.

The election is read from a .csv, .yaml, .yml, .cue or .json file. Counting
rules come from flags, then the file, then STV_* environment variables.
With --db (or STV_DB) the tally is stored for later replay.

A CSV file starts with the candidate row by default (--csv-layout plain):
a voter column, then one column per candidate, then one row per voter.
Form exports that carry a title row above the candidates and an
instruction row below them use --csv-layout form. --csv-preamble and
--csv-skip set the row counts directly.`,
		Example: `  stv count board.yaml
  stv count ballots.csv --seats 3 --rounds
  stv count export.csv --csv-layout form
  stv count board.yaml --db tallies.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, rootOpts, opts, args[0])
		},
	}

	opts.TallyFlags.register(cmd)
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to store the tally in (env "+EnvDB+")")
	cmd.Flags().BoolVar(&opts.ShowRounds, "rounds", false, "print the round-by-round table")

	return cmd
}

func runCount(cmd *cobra.Command, rootOpts *RootOptions, opts *CountOptions, path string) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd)

	loadOpts, err := opts.loadOptions(cmd)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeInvalidInput, err)
	}
	loaded, err := LoadElection(path, loadOpts)
	if err != nil {
		return loadFailure(formatter, err)
	}
	election := loaded.Election
	formatter.VerboseLog("Loaded %d candidate(s) and %d ballot(s) from %s", len(election.Candidates), len(election.Ballots), path)

	cfg, err := opts.resolve(cmd, loaded.Config)
	if err != nil {
		return formatter.Fail(GetExitCode(err), ErrCodeInvalidInput, err)
	}

	eng, err := engine.NewFromConfig(cfg, engine.WithLogger(logger))
	if err != nil {
		return formatter.TallyFailure(err)
	}
	result, err := eng.Tally(election)
	if err != nil {
		return formatter.TallyFailure(err)
	}

	rec, err := store.NewTallyRecord(election, cfg, result)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	if dbPath := stringFromEnv(cmd, "db", EnvDB); dbPath != "" {
		rec, err = persistTally(cmd, dbPath, rec)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err)
		}
		formatter.VerboseLog("Stored tally %s in %s", rec.ID, dbPath)
	}

	if formatter.Format == "json" {
		return formatter.Success(newCountOutput(rec))
	}
	if err := renderCount(formatter.Writer, election, cfg, result, opts.ShowRounds); err != nil {
		return err
	}
	if rec.ID != "" {
		formatter.VerboseLog("Tally ID: %s", rec.ID)
	}
	return nil
}

func persistTally(cmd *cobra.Command, dbPath string, rec ir.TallyRecord) (ir.TallyRecord, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return ir.TallyRecord{}, err
	}
	defer st.Close()
	return st.WriteTally(cmd.Context(), rec)
}

func newCountOutput(rec ir.TallyRecord) CountOutput {
	names := rec.Election.Names()
	winners := make([]WinnerOutput, len(rec.Result.Winners))
	for i, w := range rec.Result.Winners {
		winners[i] = WinnerOutput{Winner: w, Name: displayName(names, w.Candidate)}
	}
	rounds := rec.Result.Rounds
	if rounds == nil {
		rounds = []ir.Round{}
	}
	return CountOutput{
		ID:           rec.ID,
		Title:        rec.Election.Title,
		Config:       rec.Config,
		ElectionHash: rec.ElectionHash,
		ResultHash:   rec.ResultHash,
		Quota:        rec.Result.Quota,
		TotalVotes:   rec.Result.TotalVotes,
		Exhausted:    rec.Result.Exhausted,
		Winners:      winners,
		Rounds:       rounds,
	}
}
