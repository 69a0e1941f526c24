package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/logging"
	"github.com/roach88/stv/internal/store"
	"github.com/roach88/stv/internal/testutil"
)

// Harness is the test execution engine.
// It counts scenarios and persists them through a scenario-local store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Create fresh in-memory database
//  2. Build the election and engine from the scenario
//  3. Count; a failed count is checked against expect.error
//  4. Persist the tally and read it back
//  5. Evaluate expectations against the stored result
//
// The returned error reports harness failures only. A count that fails or
// disagrees with the scenario yields a Result with Pass false.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, logging.NewNop())
}

// RunWithLogger is Run with engine diagnostics sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("scenario")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: logger}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	tally, err := h.count(scenario)
	if err != nil {
		code := engine.CodeOf(err)
		if code == "" {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result.ErrorCode = string(code)
		for _, msg := range EvaluateError(err, scenario.Expect) {
			result.AddError(msg)
		}
		return result, nil
	}

	stored, err := h.persist(ctx, scenario, tally)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	result.TallyID = stored.ID
	result.Tally = &stored.Result

	for _, msg := range EvaluateAssertions(stored.Result, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

type countedTally struct {
	election ir.Election
	config   ir.TallyConfig
	result   ir.Result
}

// count builds the election and engine and runs the count. Errors from
// the election document and the engine both carry error codes.
func (h *Harness) count(scenario *Scenario) (*countedTally, error) {
	election, err := scenario.Election.Election()
	if err != nil {
		return nil, err
	}
	if election.Title == "" {
		election.Title = scenario.Name
	}

	eng, err := engine.NewFromConfig(scenario.Config(), engine.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}

	res, err := eng.Tally(election)
	if err != nil {
		return nil, err
	}
	return &countedTally{election: election, config: eng.Config(), result: res}, nil
}

// persist writes the tally and reads it back, failing if the stored
// result no longer hashes to what was written.
func (h *Harness) persist(ctx context.Context, scenario *Scenario, t *countedTally) (ir.TallyRecord, error) {
	rec, err := store.NewTallyRecord(t.election, t.config, t.result)
	if err != nil {
		return ir.TallyRecord{}, err
	}

	written, err := h.store.WriteTally(ctx, rec)
	if err != nil {
		return ir.TallyRecord{}, err
	}

	stored, err := h.store.ReadTally(ctx, written.ID)
	if err != nil {
		return ir.TallyRecord{}, err
	}

	hash, err := ir.ResultHash(stored.Result)
	if err != nil {
		return ir.TallyRecord{}, err
	}
	if hash != rec.ResultHash {
		return ir.TallyRecord{}, fmt.Errorf("stored result hash %s != counted %s", hash, rec.ResultHash)
	}

	h.logger.Debug("scenario tally stored",
		"scenario", scenario.Name,
		"tally_id", stored.ID,
		"result_hash", stored.ResultHash)
	return stored, nil
}
