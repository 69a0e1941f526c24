package harness

import "github.com/roach88/stv/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Tally is the counted result as read back from the store. Nil when
	// the count failed.
	Tally *ir.Result `json:"tally,omitempty"`

	// TallyID is the ID the store assigned to the persisted tally.
	TallyID string `json:"tally_id,omitempty"`

	// ErrorCode is the code of the error the count failed with, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
