package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/stv/internal/ir"
)

// TallyError represents an error detected while validating or counting an
// election. No partial result accompanies a TallyError.
//
// Tally errors include:
//   - Invalid input: bad seat count, unknown or repeated candidates, no ballots
//   - Stalled: a round neither elected nor eliminated while seats remained
//   - Ambiguous: a ballot ranks two candidates equally
type TallyError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Candidate identifies the affected candidate, if any.
	Candidate ir.CandidateID

	// Round is the round in which the error surfaced (0 during validation).
	Round int

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes tally errors.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates the election or configuration is malformed.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeStalled indicates the count could not make progress.
	ErrCodeStalled ErrorCode = "STALLED"

	// ErrCodeAmbiguous indicates a ballot expressed an equal preference.
	ErrCodeAmbiguous ErrorCode = "AMBIGUOUS"
)

// Error implements the error interface.
func (e *TallyError) Error() string {
	if e.Round > 0 && e.Candidate != "" {
		return fmt.Sprintf("%s: %s (round=%d, candidate=%s)", e.Code, e.Message, e.Round, e.Candidate)
	}
	if e.Round > 0 {
		return fmt.Sprintf("%s: %s (round=%d)", e.Code, e.Message, e.Round)
	}
	if e.Candidate != "" {
		return fmt.Sprintf("%s: %s (candidate=%s)", e.Code, e.Message, e.Candidate)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the error code carried by err, or "" if err is not (and
// does not wrap) a TallyError or RoundsExceededError.
func CodeOf(err error) ErrorCode {
	var te *TallyError
	if errors.As(err, &te) {
		return te.Code
	}
	var re *RoundsExceededError
	if errors.As(err, &re) {
		return ErrCodeStalled
	}
	return ""
}

// IsInvalidInput returns true if the error is an invalid input error.
// Uses errors.As to handle wrapped errors.
func IsInvalidInput(err error) bool {
	return CodeOf(err) == ErrCodeInvalidInput
}

// IsStalled returns true if the error is a stalled count error.
// Matches both TallyError with ErrCodeStalled and RoundsExceededError.
func IsStalled(err error) bool {
	return CodeOf(err) == ErrCodeStalled
}

// IsAmbiguous returns true if the error is an ambiguous ballot error.
func IsAmbiguous(err error) bool {
	return CodeOf(err) == ErrCodeAmbiguous
}

// NewInvalidInputError creates a TallyError for malformed input.
func NewInvalidInputError(format string, args ...any) *TallyError {
	return &TallyError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewStalledError creates a TallyError for a round that made no progress.
func NewStalledError(round, elected, seats int) *TallyError {
	return &TallyError{
		Code:    ErrCodeStalled,
		Message: fmt.Sprintf("round neither elected nor eliminated (%d of %d seats filled)", elected, seats),
		Round:   round,
		Details: map[string]string{
			"elected": fmt.Sprintf("%d", elected),
			"seats":   fmt.Sprintf("%d", seats),
		},
	}
}

// NewAmbiguousError creates a TallyError for a ballot with an equal ranking.
func NewAmbiguousError(format string, args ...any) *TallyError {
	return &TallyError{
		Code:    ErrCodeAmbiguous,
		Message: fmt.Sprintf(format, args...),
	}
}

// withBallot attaches the offending ballot index.
func (e *TallyError) withBallot(index int) *TallyError {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details["ballot"] = fmt.Sprintf("%d", index)
	return e
}
