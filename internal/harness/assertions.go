package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/ir"
)

// AssertionError is returned when an expectation fails.
// It includes the round trace to help debug the failure.
type AssertionError struct {
	Type     string     // Expectation that failed
	Expected string     // Human-readable expected outcome
	Actual   string     // Human-readable actual outcome
	Rounds   []ir.Round // Full round trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Rounds) > 0 {
		fmt.Fprintf(&buf, "\nRounds:\n")
		for _, r := range e.Rounds {
			fmt.Fprintf(&buf, "  [%d] %s\n", r.Number, describeRound(r))
		}
	}

	return buf.String()
}

func describeRound(r ir.Round) string {
	parts := make([]string, 0, len(r.Tallies)+1)
	for _, t := range r.Tallies {
		parts = append(parts, fmt.Sprintf("%s=%s", t.Candidate, t.Votes))
	}
	switch {
	case len(r.Elected) > 0:
		parts = append(parts, fmt.Sprintf("elected %v", r.Elected))
	case r.Eliminated != "":
		parts = append(parts, fmt.Sprintf("eliminated %s", r.Eliminated))
	}
	return strings.Join(parts, " ")
}

// EvaluateAssertions checks a successful count against the expectation.
// Returns one message per failed check, empty when everything matches.
func EvaluateAssertions(result ir.Result, expect Expectation) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if expect.Error != "" {
		add(&AssertionError{
			Type:     "error",
			Expected: fmt.Sprintf("count fails with %s", expect.Error),
			Actual:   fmt.Sprintf("count succeeded with winners %v", result.WinnerIDs()),
			Rounds:   result.Rounds,
		})
		return errs
	}

	add(assertWinners(result, expect.Winners))
	if expect.Eliminated != nil {
		add(assertEliminated(result, expect.Eliminated))
	}
	if expect.MaxRounds > 0 {
		add(assertMaxRounds(result, expect.MaxRounds))
	}
	if expect.Quota != "" {
		add(assertValue("quota", expect.Quota, result.Quota, result.Rounds))
	}
	if expect.Exhausted != "" {
		add(assertValue("exhausted", expect.Exhausted, result.Exhausted, result.Rounds))
	}
	return errs
}

// EvaluateError checks a failed count against the expectation.
func EvaluateError(err error, expect Expectation) []string {
	code := string(engine.CodeOf(err))
	if expect.Error == "" {
		return []string{(&AssertionError{
			Type:     "winners",
			Expected: fmt.Sprintf("winners %v", expect.Winners),
			Actual:   fmt.Sprintf("count failed: %v", err),
		}).Error()}
	}
	if code != expect.Error {
		return []string{(&AssertionError{
			Type:     "error",
			Expected: expect.Error,
			Actual:   fmt.Sprintf("%s (%v)", code, err),
		}).Error()}
	}
	return nil
}

func assertWinners(result ir.Result, expected []string) error {
	actual := idStrings(result.WinnerIDs())
	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     "winners",
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
		Rounds:   result.Rounds,
	}
}

func assertEliminated(result ir.Result, expected []string) error {
	actual := idStrings(result.EliminationOrder())
	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     "eliminated",
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
		Rounds:   result.Rounds,
	}
}

func assertMaxRounds(result ir.Result, limit int) error {
	if len(result.Rounds) <= limit {
		return nil
	}
	return &AssertionError{
		Type:     "max_rounds",
		Expected: fmt.Sprintf("at most %d rounds", limit),
		Actual:   fmt.Sprintf("%d rounds", len(result.Rounds)),
		Rounds:   result.Rounds,
	}
}

func assertValue(name, expected, actual string, rounds []ir.Round) error {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     name,
		Expected: expected,
		Actual:   actual,
		Rounds:   rounds,
	}
}

func idStrings(ids []ir.CandidateID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
