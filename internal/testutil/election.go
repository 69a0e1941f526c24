package testutil

import (
	"strings"

	"github.com/roach88/stv/internal/ir"
)

// ElectionBuilder assembles ir.Election fixtures from compact ranking
// strings.
//
// Example:
//
//	e := testutil.NewElection("A", "B", "C").
//		Ballots("A>B", 60).
//		Ballots("B>A", 40).
//		Build()
type ElectionBuilder struct {
	election ir.Election
}

// NewElection starts an election with the given candidate IDs. Each
// candidate's name equals its ID.
func NewElection(ids ...string) *ElectionBuilder {
	b := &ElectionBuilder{}
	for _, id := range ids {
		b.election.Candidates = append(b.election.Candidates, ir.Candidate{ID: ir.CandidateID(id), Name: id})
	}
	return b
}

// Title sets the election title.
func (b *ElectionBuilder) Title(title string) *ElectionBuilder {
	b.election.Title = title
	return b
}

// Named sets a candidate's display name.
func (b *ElectionBuilder) Named(id, name string) *ElectionBuilder {
	for i := range b.election.Candidates {
		if b.election.Candidates[i].ID == ir.CandidateID(id) {
			b.election.Candidates[i].Name = name
		}
	}
	return b
}

// Ballots appends count copies of a ballot written as "A>B>C". The empty
// string adds ballots with no preferences.
func (b *ElectionBuilder) Ballots(ranking string, count int) *ElectionBuilder {
	for range count {
		b.election.Ballots = append(b.election.Ballots, Ballot(ranking))
	}
	return b
}

// Build returns the election.
func (b *ElectionBuilder) Build() ir.Election {
	return b.election
}

// Ballot parses "A>B>C" into a ballot without validation.
func Ballot(ranking string) ir.Ballot {
	ballot := ir.Ballot{}
	if strings.TrimSpace(ranking) == "" {
		return ballot
	}
	for _, id := range strings.Split(ranking, ">") {
		ballot = append(ballot, ir.CandidateID(strings.TrimSpace(id)))
	}
	return ballot
}
