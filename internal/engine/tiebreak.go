package engine

import (
	"strings"
)

// TieBreak selects how candidates with equal totals are ordered.
//
// The ordering is used in both directions: among candidates reaching the
// quota in the same round, the one with precedence is elected first; among
// candidates sharing the lowest total, the one without precedence is
// eliminated.
type TieBreak string

const (
	// TieBreakLexical gives precedence to the lower candidate ID.
	TieBreakLexical TieBreak = "lexical"

	// TieBreakBackward looks back through earlier rounds for the most
	// recent one in which the tied candidates' totals differed; the higher
	// total then has precedence. Candidates that were level in every
	// round fall back to lexical order.
	TieBreakBackward TieBreak = "backward"
)

// DefaultTieBreak is the policy used when none is configured.
const DefaultTieBreak = TieBreakLexical

// TieBreaks lists the supported policies.
var TieBreaks = []TieBreak{TieBreakLexical, TieBreakBackward}

// ParseTieBreak resolves a policy name. The empty string selects
// DefaultTieBreak.
func ParseTieBreak(s string) (TieBreak, error) {
	if s == "" {
		return DefaultTieBreak, nil
	}
	p := TieBreak(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TieBreaks {
		if p == known {
			return p, nil
		}
	}
	return "", NewInvalidInputError("unknown tie-break policy %q", s)
}

// precedes reports whether a takes precedence over b when their current
// totals are equal.
func (p TieBreak) precedes(a, b *CandidateState) bool {
	if p == TieBreakBackward {
		// The last history entry is the current round, where they are level.
		for i, j := len(a.history)-2, len(b.history)-2; i >= 0 && j >= 0; i, j = i-1, j-1 {
			if c := a.history[i].Cmp(b.history[j]); c != 0 {
				return c > 0
			}
		}
	}
	return a.ID < b.ID
}

// compare orders candidates by descending total, then by precedence.
// It is a total order over distinct candidates, suitable for slices.SortFunc.
func (p TieBreak) compare(a, b *CandidateState) int {
	if c := b.Votes.Cmp(a.Votes); c != 0 {
		return c
	}
	if a.ID == b.ID {
		return 0
	}
	if p.precedes(a, b) {
		return -1
	}
	return 1
}
