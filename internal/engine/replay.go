package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/stv/internal/ir"
)

// Replay and determinism
//
// A tally is a pure function of (election, config). Stored tallies carry
// the canonical hash of their result, so any later run of the same inputs
// must reproduce that hash byte for byte. VerifyDeterminism runs the count
// twice in-process and compares result hashes; the replay command applies
// the same check against hashes persisted in the store.

// DeterminismError reports two runs of the same input that disagreed.
type DeterminismError struct {
	FirstHash  string
	SecondHash string
}

// Error implements the error interface.
func (e *DeterminismError) Error() string {
	return fmt.Sprintf("non-deterministic tally: result hash %s != %s", e.FirstHash, e.SecondHash)
}

// IsDeterminismError returns true if the error is a DeterminismError.
func IsDeterminismError(err error) bool {
	var de *DeterminismError
	return errors.As(err, &de)
}

// VerifyDeterminism tallies election twice and checks both results hash
// identically. It returns the first result and its hash.
func (e *Engine) VerifyDeterminism(election ir.Election) (ir.Result, string, error) {
	first, err := e.Tally(election)
	if err != nil {
		return ir.Result{}, "", err
	}
	second, err := e.Tally(election)
	if err != nil {
		return ir.Result{}, "", fmt.Errorf("second run: %w", err)
	}

	h1, err := ir.ResultHash(first)
	if err != nil {
		return ir.Result{}, "", err
	}
	h2, err := ir.ResultHash(second)
	if err != nil {
		return ir.Result{}, "", err
	}
	if h1 != h2 {
		return ir.Result{}, "", &DeterminismError{FirstHash: h1, SecondHash: h2}
	}
	return first, h1, nil
}
