package ballot

import (
	"errors"
	"fmt"

	"github.com/roach88/stv/internal/ir"
)

// Document is the structured election file shared by the YAML, CUE and
// JSON formats.
type Document struct {
	Title      string           `yaml:"title,omitempty" json:"title,omitempty"`
	Seats      int              `yaml:"seats,omitempty" json:"seats,omitempty"`
	Quota      string           `yaml:"quota,omitempty" json:"quota,omitempty"`
	TieBreak   string           `yaml:"tie_break,omitempty" json:"tie_break,omitempty"`
	Candidates []CandidateEntry `yaml:"candidates" json:"candidates"`
	Ballots    []BallotEntry    `yaml:"ballots" json:"ballots"`
}

// CandidateEntry declares one candidate. Name defaults to ID.
type CandidateEntry struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// BallotEntry is a ranking cast Count times. A zero Count means one.
type BallotEntry struct {
	Ranking string `yaml:"ranking" json:"ranking"`
	Count   int    `yaml:"count,omitempty" json:"count,omitempty"`
}

// Config returns the counting rules the document declares. Fields it
// leaves out stay zero.
func (d Document) Config() ir.TallyConfig {
	return ir.TallyConfig{Seats: d.Seats, Quota: d.Quota, TieBreak: d.TieBreak}
}

// Election converts the document into an ir.Election, expanding counted
// ballots. Candidate references are checked by the engine, not here.
func (d Document) Election() (ir.Election, error) {
	election := ir.Election{Title: d.Title}

	for i, c := range d.Candidates {
		id := Normalize(c.ID)
		if id == "" {
			err := invalidf("candidate id is required")
			err.Field = fmt.Sprintf("candidates[%d].id", i)
			return ir.Election{}, err
		}
		election.Candidates = append(election.Candidates, ir.Candidate{
			ID:   ir.CandidateID(id),
			Name: Normalize(c.Name),
		})
	}

	for i, entry := range d.Ballots {
		ballot, err := ParseRanking(entry.Ranking)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Field = fmt.Sprintf("ballots[%d].ranking", i)
			}
			return ir.Election{}, err
		}
		count := entry.Count
		if count < 0 {
			err := invalidf("count must not be negative, got %d", count)
			err.Field = fmt.Sprintf("ballots[%d].count", i)
			return ir.Election{}, err
		}
		if count == 0 {
			count = 1
		}
		for range count {
			election.Ballots = append(election.Ballots, ballot)
		}
	}

	return election, nil
}
