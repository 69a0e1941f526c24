package ballot

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/stv/internal/ir"
)

// Normalize trims s and converts it to NFC.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ParseRanking parses the compact notation "A>B>C" into a ballot.
//
// The empty string is an empty ballot. "A=B" (an equal preference) is
// rejected as ambiguous; an empty position such as "A>>B" or a candidate
// listed twice is invalid input. Candidate IDs are not checked against an
// election here.
func ParseRanking(s string) (ir.Ballot, error) {
	ballot := ir.Ballot{}
	if strings.TrimSpace(s) == "" {
		return ballot, nil
	}

	seen := make(map[ir.CandidateID]bool)
	for i, part := range strings.Split(s, ">") {
		if strings.Contains(part, "=") {
			return nil, ambiguousf("ranking %q places candidates equally at position %d", s, i+1)
		}
		id := ir.CandidateID(Normalize(part))
		if id == "" {
			return nil, invalidf("ranking %q has an empty position %d", s, i+1)
		}
		if seen[id] {
			return nil, invalidf("ranking %q lists %s more than once", s, id)
		}
		seen[id] = true
		ballot = append(ballot, id)
	}
	return ballot, nil
}

// FormatRanking renders a ballot in "A>B>C" notation.
func FormatRanking(b ir.Ballot) string {
	parts := make([]string, len(b))
	for i, id := range b {
		parts[i] = string(id)
	}
	return strings.Join(parts, ">")
}
