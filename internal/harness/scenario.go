package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stv/internal/ballot"
	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/ir"
)

// Scenario defines a conformance test scenario: an election, the rules to
// count it under, and the outcome the count must produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Election is the inline election, in the same shape as a YAML
	// election file.
	Election ballot.Document `yaml:"election"`

	// Seats, Quota and TieBreak override the election's own settings.
	Seats    int    `yaml:"seats,omitempty"`
	Quota    string `yaml:"quota,omitempty"`
	TieBreak string `yaml:"tie_break,omitempty"`

	// Expect is the outcome the count must produce.
	Expect Expectation `yaml:"expect"`
}

// Expectation lists what a scenario checks. Unset fields are not checked.
type Expectation struct {
	// Winners is the exact winner order, by candidate ID.
	Winners []string `yaml:"winners,omitempty"`

	// Error is the expected error code. Mutually exclusive with Winners.
	Error string `yaml:"error,omitempty"`

	// Eliminated is the exact elimination order.
	Eliminated []string `yaml:"eliminated,omitempty"`

	// MaxRounds bounds the number of rounds the count may take.
	MaxRounds int `yaml:"max_rounds,omitempty"`

	// Quota and Exhausted are exact rationals in "n" or "n/d" form.
	Quota     string `yaml:"quota,omitempty"`
	Exhausted string `yaml:"exhausted,omitempty"`
}

// expectedCodes are the error codes a scenario may expect.
var expectedCodes = []string{
	string(engine.ErrCodeInvalidInput),
	string(engine.ErrCodeAmbiguous),
	string(engine.ErrCodeStalled),
}

// Config returns the counting rules for the scenario: the election's own
// settings with the scenario's overrides applied. Seats default to
// engine.DefaultSeats.
func (s *Scenario) Config() ir.TallyConfig {
	cfg := s.Election.Config()
	if s.Seats != 0 {
		cfg.Seats = s.Seats
	}
	if s.Quota != "" {
		cfg.Quota = s.Quota
	}
	if s.TieBreak != "" {
		cfg.TieBreak = s.TieBreak
	}
	if cfg.Seats == 0 {
		cfg.Seats = engine.DefaultSeats
	}
	return cfg
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "expects:" vs "expect:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Election content is left to the engine so scenarios can expect
// INVALID_INPUT.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Election.Candidates) == 0 {
		return fmt.Errorf("election.candidates is required and must be non-empty")
	}

	if s.Seats < 0 {
		return fmt.Errorf("seats must be non-negative, got %d", s.Seats)
	}

	return validateExpectation(&s.Expect)
}

func validateExpectation(e *Expectation) error {
	if len(e.Winners) == 0 && e.Error == "" {
		return fmt.Errorf("expect: winners or error is required")
	}

	if len(e.Winners) > 0 && e.Error != "" {
		return fmt.Errorf("expect: winners and error are mutually exclusive")
	}

	if e.Error != "" && !slices.Contains(expectedCodes, e.Error) {
		return fmt.Errorf("expect.error: unknown error code %q", e.Error)
	}

	if e.MaxRounds < 0 {
		return fmt.Errorf("expect.max_rounds must be non-negative, got %d", e.MaxRounds)
	}

	return nil
}
