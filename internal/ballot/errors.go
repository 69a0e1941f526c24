package ballot

import (
	"fmt"

	"github.com/roach88/stv/internal/engine"
)

// ParseError locates a malformed election file entry.
type ParseError struct {
	Code    engine.ErrorCode
	Message string

	// File is the source name, if known.
	File string

	// Line and Column are 1-indexed; zero when unknown.
	Line   int
	Column int

	// Field names the document field, e.g. "ballots[2].ranking".
	Field string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap exposes the engine error kind so engine.IsAmbiguous and
// engine.IsInvalidInput see through a ParseError.
func (e *ParseError) Unwrap() error {
	return &engine.TallyError{Code: e.Code, Message: e.Message}
}

func invalidf(format string, args ...any) *ParseError {
	return &ParseError{Code: engine.ErrCodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func ambiguousf(format string, args ...any) *ParseError {
	return &ParseError{Code: engine.ErrCodeAmbiguous, Message: fmt.Sprintf(format, args...)}
}

// at sets the location and returns e.
func (e *ParseError) at(file string, line, column int) *ParseError {
	e.File = file
	e.Line = line
	e.Column = column
	return e
}
