package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stv/internal/engine"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())

	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "E007", cause)
	assert.Equal(t, "E007: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestTallyErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{engine.NewInvalidInputError("no ballots"), ErrCodeInvalidInput},
		{engine.NewStalledError(3, 1, 2), ErrCodeStalled},
		{engine.NewAmbiguousError("A=B"), ErrCodeAmbiguous},
		{&engine.RoundsExceededError{Rounds: 4, Limit: 3}, ErrCodeStalled},
		{errors.New("other"), ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TallyErrorCode(tt.err))
		})
	}
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Error(ErrCodeNotFound, "tally not found", nil))
	assert.Equal(t, "Error [E005]: tally not found\n", buf.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	err := f.Fail(ExitFailure, ErrCodeAmbiguous, errors.New("ballot ranks A and B equally"))
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeAmbiguous, resp.Error.Code)
	assert.Equal(t, "ballot ranks A and B equally", resp.Error.Message)
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.VerboseLog("loaded %d ballots", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3 ballots\n", errOut.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.Equal(t, "loaded 3 ballots\n", errOut.String())
}
