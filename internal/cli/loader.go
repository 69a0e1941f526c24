package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/stv/internal/ballot"
	"github.com/roach88/stv/internal/engine"
)

// LoadError represents an error during election loading.
type LoadError struct {
	Code    string // E002, E004, E005 or E006
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadElection reads an election file and classifies any failure:
// a missing path is E005, rejected content carries its tally code and
// everything else is E006.
func LoadElection(path string, opts ballot.Options) (*ballot.Loaded, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("election file not found: %s", path), Err: err}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("not a file: %s", path)}
	}

	loaded, err := ballot.Load(path, opts)
	if err != nil {
		code := ErrCodeLoadFailed
		if engine.CodeOf(err) != "" {
			code = TallyErrorCode(err)
		}
		return nil, &LoadError{Code: code, Message: err.Error(), Err: err}
	}
	return loaded, nil
}

// loadFailure reports a LoadError through the formatter. Content the
// engine rejects is a tally failure; anything else is a command error.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	exitCode := ExitCommandError
	if engine.CodeOf(loadErr.Err) != "" {
		exitCode = ExitFailure
	}
	if outErr := f.Error(loadErr.Code, loadErr.Message, nil); outErr != nil {
		return outErr
	}
	return WrapExitError(exitCode, loadErr.Code, loadErr)
}
