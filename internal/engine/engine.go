package engine

import (
	"log/slog"

	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/logging"
)

// DefaultSeats is the seat count used when none is configured.
const DefaultSeats = 4

// Engine counts elections under a fixed configuration.
//
// An Engine holds no per-tally state: every Tally call builds its own
// TallyState, so one Engine may serve concurrent callers.
type Engine struct {
	seats    int
	quota    QuotaFormula
	tieBreak TieBreak
	logger   *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithSeats sets the number of seats to fill.
//
// Default: 4 seats (DefaultSeats)
func WithSeats(seats int) EngineOption {
	return func(e *Engine) {
		e.seats = seats
	}
}

// WithQuota sets the quota formula.
//
// Default: QuotaDroop
func WithQuota(formula QuotaFormula) EngineOption {
	return func(e *Engine) {
		e.quota = formula
	}
}

// WithTieBreak sets the tie-break policy.
//
// Default: TieBreakLexical
func WithTieBreak(policy TieBreak) EngineOption {
	return func(e *Engine) {
		e.tieBreak = policy
	}
}

// WithLogger sets the logger used for round-by-round diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine. Options override the defaults of 4 seats, Droop
// quota and lexical tie-break.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		seats:    DefaultSeats,
		quota:    DefaultQuota,
		tieBreak: DefaultTieBreak,
		logger:   logging.NewNop(),
	}

	// Apply options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// NewFromConfig creates an Engine from a serialized TallyConfig. Empty
// quota and tie-break names select the defaults; the seat count is taken
// as given and validated when counting.
func NewFromConfig(cfg ir.TallyConfig, opts ...EngineOption) (*Engine, error) {
	formula, err := ParseQuotaFormula(cfg.Quota)
	if err != nil {
		return nil, err
	}
	policy, err := ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return nil, err
	}
	base := []EngineOption{WithSeats(cfg.Seats), WithQuota(formula), WithTieBreak(policy)}
	return New(append(base, opts...)...), nil
}

// Config returns the engine configuration in serialized form.
func (e *Engine) Config() ir.TallyConfig {
	return ir.TallyConfig{
		Seats:    e.seats,
		Quota:    string(e.quota),
		TieBreak: string(e.tieBreak),
	}
}

// Tally counts an election and builds its result.
func (e *Engine) Tally(election ir.Election) (ir.Result, error) {
	state, err := e.Count(election)
	if err != nil {
		return ir.Result{}, err
	}
	return BuildResult(state), nil
}

// Count runs the round loop to completion and returns the final state.
// Most callers want Tally; Count exposes the state for inspection.
func (e *Engine) Count(election ir.Election) (*TallyState, error) {
	state, err := NewTallyState(election, e.seats, e.quota, e.tieBreak)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("tally started",
		"candidates", len(state.Candidates),
		"ballots", len(election.Ballots),
		"seats", state.Seats,
		"quota", state.Quota.String(),
		"formula", string(state.Quota.Formula))

	guard := NewRoundGuard(len(state.Candidates))
	state.tabulate()
	// With no more candidates than seats, everyone is elected uncounted.
	counting := !state.done()
	for counting && !state.finished() {
		if err := guard.Check(); err != nil {
			return nil, err
		}
		round, err := state.step(guard.Current())
		if err != nil {
			return nil, err
		}
		e.logger.Debug("round complete",
			"round", round.Number,
			"elected", round.Elected,
			"eliminated", string(round.Eliminated),
			"exhausted", round.Exhausted)
		state.tabulate()
	}
	state.Complete = true

	e.logger.Info("tally complete",
		"rounds", len(state.Rounds),
		"elected", state.ElectedCount(),
		"exhausted", state.Exhausted.RatString())
	return state, nil
}

// step runs one round after tabulation: elect everyone who reached the
// quota, or else eliminate the lowest standing candidate, then transfer.
func (s *TallyState) step(round int) (ir.Round, error) {
	if reached := s.quotaReached(); len(reached) > 0 {
		ids := make([]ir.CandidateID, len(reached))
		for i, c := range reached {
			s.elect(c, round)
			ids[i] = c.ID
		}
		snap := s.snapshot(round, ids, "")
		if s.done() {
			return snap, nil
		}
		for _, c := range reached {
			s.transferSurplus(c)
		}
		return snap, nil
	}

	standing := s.ranked(s.Standing())
	if len(standing) == 0 {
		return ir.Round{}, NewStalledError(round, s.elected, s.Seats)
	}
	lowest := standing[len(standing)-1]
	s.eliminate(lowest)
	snap := s.snapshot(round, nil, lowest.ID)
	s.transferEliminated(lowest)
	return snap, nil
}
