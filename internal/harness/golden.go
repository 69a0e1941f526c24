package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stv/internal/ir"
)

// TraceSnapshot captures the complete outcome of a scenario execution:
// either the full result with every round, or the error code.
type TraceSnapshot struct {
	ScenarioName string     `json:"scenario"`
	Result       *ir.Result `json:"result,omitempty"`
	ErrorCode    string     `json:"error,omitempty"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives,
// maps and slices.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	out := map[string]any{
		"scenario": s.ScenarioName,
	}
	if s.Result != nil {
		out["result"] = ir.ResultObject(*s.Result)
	}
	if s.ErrorCode != "" {
		out["error"] = s.ErrorCode
	}
	return out
}

// MarshalSnapshot encodes the trace snapshot of a scenario result as
// canonical JSON.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Result:       result.Tally,
		ErrorCode:    result.ErrorCode,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
