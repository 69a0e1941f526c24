package engine

import (
	"github.com/roach88/stv/internal/ir"
)

// BuildResult turns a completed count into its ranked outcome.
//
// Candidates elected by quota come first in the order they were elected.
// If seats remain, the candidates still standing fill them by descending
// total (ties by the count's policy), ranks continuing; these winners are
// marked ByExhaustion. The winner list never exceeds the seat count.
func BuildResult(s *TallyState) ir.Result {
	var winners []ir.Winner
	for _, c := range s.Elected() {
		winners = append(winners, ir.Winner{
			Candidate: c.ID,
			Rank:      c.Rank,
			Votes:     c.ElectedVotes.RatString(),
			Round:     c.ElectedRound,
		})
	}

	if open := s.Seats - len(winners); open > 0 {
		standing := s.ranked(s.Standing())
		if len(standing) > open {
			standing = standing[:open]
		}
		for _, c := range standing {
			winners = append(winners, ir.Winner{
				Candidate:    c.ID,
				Rank:         len(winners) + 1,
				Votes:        c.Votes.RatString(),
				Round:        len(s.Rounds),
				ByExhaustion: true,
			})
		}
	}

	return ir.Result{
		Quota:      s.Quota.String(),
		TotalVotes: s.Total.RatString(),
		Exhausted:  s.Exhausted.RatString(),
		Winners:    winners,
		Rounds:     append(make([]ir.Round, 0, len(s.Rounds)), s.Rounds...),
	}
}
