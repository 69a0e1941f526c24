package cli

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/roach88/stv/internal/ir"
)

const rule = "###################"

// renderCount writes the candidate and winner listing, followed by the
// round table when showRounds is set.
func renderCount(w io.Writer, election ir.Election, cfg ir.TallyConfig, result ir.Result, showRounds bool) error {
	names := election.Names()

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Candidates:")
	fmt.Fprintln(w, "-----------")
	for _, c := range election.Candidates {
		fmt.Fprintf(w, "- %s\n", c.DisplayName())
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Winners:")
	fmt.Fprintln(w, "--------")
	for _, winner := range result.Winners {
		fmt.Fprintf(w, "%s (rank %d)\n", displayName(names, winner.Candidate), winner.Rank)
	}

	if !showRounds {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Quota: %s (%s)\n", decimal(result.Quota), cfg.Quota)
	fmt.Fprintf(w, "Valid votes: %s\n", decimal(result.TotalVotes))
	fmt.Fprintln(w)
	return renderRounds(w, names, result.Rounds)
}

// renderRounds writes one table row per round: every candidate's total,
// the exhausted weight and what the round decided.
func renderRounds(w io.Writer, names map[ir.CandidateID]string, rounds []ir.Round) error {
	if len(rounds) == 0 {
		fmt.Fprintln(w, "No rounds: every standing candidate filled a seat.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"Round"}
	for _, t := range rounds[0].Tallies {
		header = append(header, displayName(names, t.Candidate))
	}
	header = append(header, "Exhausted", "Result")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, round := range rounds {
		row := []string{fmt.Sprint(round.Number)}
		for _, t := range round.Tallies {
			row = append(row, decimal(t.Votes))
		}
		row = append(row, decimal(round.Exhausted), roundOutcome(names, round))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func roundOutcome(names map[ir.CandidateID]string, round ir.Round) string {
	if len(round.Elected) > 0 {
		elected := make([]string, len(round.Elected))
		for i, id := range round.Elected {
			elected[i] = displayName(names, id)
		}
		return "elected " + strings.Join(elected, ", ")
	}
	if round.Eliminated != "" {
		return "eliminated " + displayName(names, round.Eliminated)
	}
	return ""
}

func displayName(names map[ir.CandidateID]string, id ir.CandidateID) string {
	if name, ok := names[id]; ok {
		return name
	}
	return string(id)
}

// decimal renders an exact rational with four decimal places. Values that
// do not parse are returned unchanged.
func decimal(s string) string {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return s
	}
	return r.FloatString(4)
}
