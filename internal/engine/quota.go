package engine

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// QuotaFormula selects how the election quota is derived from the vote total.
type QuotaFormula string

const (
	// QuotaDroop is floor(total/(seats+1)) + 1. Reached at or above.
	QuotaDroop QuotaFormula = "droop"

	// QuotaHare is total/seats. Reached at or above.
	QuotaHare QuotaFormula = "hare"

	// QuotaHagenbachBischoff is the exact total/(seats+1). Reached only
	// strictly above, so no more than seats candidates can attain it.
	QuotaHagenbachBischoff QuotaFormula = "hagenbach-bischoff"

	// QuotaImperiali is total/(seats+2). Reached at or above.
	QuotaImperiali QuotaFormula = "imperiali"
)

// DefaultQuota is the formula used when none is configured.
const DefaultQuota = QuotaDroop

// QuotaFormulas lists the supported formulas in display order.
var QuotaFormulas = []QuotaFormula{QuotaDroop, QuotaHare, QuotaHagenbachBischoff, QuotaImperiali}

// ParseQuotaFormula resolves a formula name. The empty string selects
// DefaultQuota.
func ParseQuotaFormula(s string) (QuotaFormula, error) {
	if s == "" {
		return DefaultQuota, nil
	}
	f := QuotaFormula(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range QuotaFormulas {
		if f == known {
			return f, nil
		}
	}
	return "", NewInvalidInputError("unknown quota formula %q", s)
}

// Quota is the vote threshold for election, fixed for the whole count.
type Quota struct {
	Formula QuotaFormula
	Value   *big.Rat

	// Exclusive quotas are reached only by totals strictly greater than Value.
	Exclusive bool
}

// Reached reports whether total attains the quota.
func (q Quota) Reached(total *big.Rat) bool {
	c := total.Cmp(q.Value)
	if q.Exclusive {
		return c > 0
	}
	return c >= 0
}

// String returns the exact quota value.
func (q Quota) String() string {
	if q.Value == nil {
		return "0"
	}
	return q.Value.RatString()
}

// ComputeQuota derives the quota for totalValid votes and seats.
//
// Returns an invalid input error when seats < 1, totalValid <= 0 or the
// formula is unknown.
func ComputeQuota(formula QuotaFormula, totalValid *big.Rat, seats int) (Quota, error) {
	if seats < 1 {
		return Quota{}, NewInvalidInputError("seats must be at least 1, got %d", seats)
	}
	if totalValid == nil || totalValid.Sign() <= 0 {
		return Quota{}, NewInvalidInputError("total valid votes must be positive")
	}

	q := Quota{Formula: formula}
	switch formula {
	case QuotaDroop:
		share := new(big.Rat).Quo(totalValid, big.NewRat(int64(seats)+1, 1))
		floor := new(big.Int).Quo(share.Num(), share.Denom())
		q.Value = new(big.Rat).SetInt(floor.Add(floor, big.NewInt(1)))
	case QuotaHare:
		q.Value = new(big.Rat).Quo(totalValid, big.NewRat(int64(seats), 1))
	case QuotaHagenbachBischoff:
		q.Value = new(big.Rat).Quo(totalValid, big.NewRat(int64(seats)+1, 1))
		q.Exclusive = true
	case QuotaImperiali:
		q.Value = new(big.Rat).Quo(totalValid, big.NewRat(int64(seats)+2, 1))
	default:
		return Quota{}, NewInvalidInputError("unknown quota formula %q", formula)
	}
	return q, nil
}

// RoundGuard bounds the number of counting rounds.
//
// Every productive round elects or eliminates at least one candidate, so
// a count over n candidates needs at most n rounds. Exceeding that means
// the count is stuck; the guard turns a would-be infinite loop into a
// Stalled error.
type RoundGuard struct {
	maxRounds int
	current   int
}

// NewRoundGuard creates a guard allowing maxRounds rounds.
func NewRoundGuard(maxRounds int) *RoundGuard {
	return &RoundGuard{maxRounds: maxRounds}
}

// Check increments the round counter and validates against the limit.
func (g *RoundGuard) Check() error {
	g.current++
	if g.current > g.maxRounds {
		return &RoundsExceededError{Rounds: g.current, Limit: g.maxRounds}
	}
	return nil
}

// Current returns the number of rounds checked so far.
func (g *RoundGuard) Current() int {
	return g.current
}

// MaxRounds returns the round limit.
func (g *RoundGuard) MaxRounds() int {
	return g.maxRounds
}

// RoundsExceededError is returned when a count runs more rounds than
// there are candidates. IsStalled matches it.
type RoundsExceededError struct {
	Rounds int
	Limit  int
}

// Error implements the error interface.
func (e *RoundsExceededError) Error() string {
	return fmt.Sprintf("%s: count exceeded round limit: %d rounds > %d candidates",
		ErrCodeStalled, e.Rounds, e.Limit)
}

// IsRoundsExceededError returns true if the error is a RoundsExceededError.
func IsRoundsExceededError(err error) bool {
	var re *RoundsExceededError
	return errors.As(err, &re)
}
