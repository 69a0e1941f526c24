package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/stv/internal/ballot"
	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/ir"
)

// Environment variables consulted when a flag is not given.
const (
	EnvSeats    = "STV_SEATS"
	EnvQuota    = "STV_QUOTA"
	EnvTieBreak = "STV_TIE_BREAK"
	EnvDB       = "STV_DB"
	EnvAddr     = "STV_ADDR"
)

// TallyFlags holds the counting-rule flags shared by count and validate.
type TallyFlags struct {
	Seats       int
	Quota       string
	TieBreak    string
	CSVLayout   string
	CSVPreamble int
	CSVSkip     int
}

// register adds the tally flags to cmd.
func (f *TallyFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.Seats, "seats", engine.DefaultSeats, "number of seats to fill (env "+EnvSeats+")")
	cmd.Flags().StringVar(&f.Quota, "quota", string(engine.DefaultQuota), "quota formula: droop|hare|hagenbach-bischoff|imperiali (env "+EnvQuota+")")
	cmd.Flags().StringVar(&f.TieBreak, "tie-break", string(engine.DefaultTieBreak), "tie-break policy: lexical|backward (env "+EnvTieBreak+")")
	cmd.Flags().StringVar(&f.CSVLayout, "csv-layout", ballot.CSVLayoutPlain, "CSV row layout: plain (candidate row first) | form (title row, candidate row, one instruction row)")
	cmd.Flags().IntVar(&f.CSVPreamble, "csv-preamble", 0, "CSV rows before the candidate row (overrides --csv-layout)")
	cmd.Flags().IntVar(&f.CSVSkip, "csv-skip", 0, "CSV rows between the candidate row and the first ballot (overrides --csv-layout)")
}

// loadOptions returns the ballot loading options the flags describe:
// the --csv-layout preset, with explicit row counts taking precedence.
func (f *TallyFlags) loadOptions(cmd *cobra.Command) (ballot.Options, error) {
	csvOpts, err := ballot.CSVLayout(f.CSVLayout)
	if err != nil {
		return ballot.Options{}, WrapExitError(ExitCommandError, "invalid csv layout", err)
	}
	if cmd.Flags().Changed("csv-preamble") {
		csvOpts.Preamble = f.CSVPreamble
	}
	if cmd.Flags().Changed("csv-skip") {
		csvOpts.SkipRows = f.CSVSkip
	}
	return ballot.Options{CSV: csvOpts}, nil
}

// resolve merges the counting rules. Precedence per field: explicit flag,
// then the election file, then the environment, then the default.
func (f *TallyFlags) resolve(cmd *cobra.Command, file ir.TallyConfig) (ir.TallyConfig, error) {
	cfg := ir.TallyConfig{
		Seats:    engine.DefaultSeats,
		Quota:    string(engine.DefaultQuota),
		TieBreak: string(engine.DefaultTieBreak),
	}

	if v, ok := os.LookupEnv(EnvSeats); ok {
		seats, err := strconv.Atoi(v)
		if err != nil {
			return ir.TallyConfig{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q: must be an integer", EnvSeats, v))
		}
		cfg.Seats = seats
	}
	if v, ok := os.LookupEnv(EnvQuota); ok {
		cfg.Quota = v
	}
	if v, ok := os.LookupEnv(EnvTieBreak); ok {
		cfg.TieBreak = v
	}

	if file.Seats != 0 {
		cfg.Seats = file.Seats
	}
	if file.Quota != "" {
		cfg.Quota = file.Quota
	}
	if file.TieBreak != "" {
		cfg.TieBreak = file.TieBreak
	}

	flags := cmd.Flags()
	if flags.Changed("seats") {
		cfg.Seats = f.Seats
	}
	if flags.Changed("quota") {
		cfg.Quota = f.Quota
	}
	if flags.Changed("tie-break") {
		cfg.TieBreak = f.TieBreak
	}

	if _, err := engine.ParseQuotaFormula(cfg.Quota); err != nil {
		return ir.TallyConfig{}, WrapExitError(ExitCommandError, "invalid quota", err)
	}
	if _, err := engine.ParseTieBreak(cfg.TieBreak); err != nil {
		return ir.TallyConfig{}, WrapExitError(ExitCommandError, "invalid tie-break", err)
	}
	return cfg, nil
}

// stringFromEnv returns the flag value when it was set explicitly, the
// environment value when present, and the flag default otherwise.
func stringFromEnv(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return value
	}
	if v, ok := os.LookupEnv(env); ok {
		return v
	}
	return value
}
