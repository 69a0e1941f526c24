package engine

import (
	"math/big"
	"slices"

	"github.com/roach88/stv/internal/ir"
)

// Portion is the part of one ballot currently assigned to a candidate.
type Portion struct {
	// Ballot indexes the election's ballot list.
	Ballot int

	// Cursor is the position in the ballot of the preference holding this
	// portion.
	Cursor int

	// Weight is the fraction of the vote still live, in (0, 1].
	Weight *big.Rat
}

// CandidateState tracks one candidate through the count.
type CandidateState struct {
	ID     ir.CandidateID
	Status ir.CandidateStatus

	// Votes is the total from the most recent tabulation. After a surplus
	// transfer it is the quota the candidate retains; after elimination it
	// is zero.
	Votes *big.Rat

	// Rank is the 1-indexed seat order, set on election.
	Rank int

	// ElectedRound is the round in which the candidate reached the quota.
	ElectedRound int

	// ElectedVotes is the total at the moment of election.
	ElectedVotes *big.Rat

	portions []Portion
	history  []*big.Rat // one total per tabulation while standing
}

// TallyState is the mutable state of a single count. It is created by
// NewTallyState and advanced only by Engine.Count.
type TallyState struct {
	Seats      int
	Quota      Quota
	TieBreak   TieBreak
	Total      *big.Rat // valid votes: ballots with at least one preference
	Exhausted  *big.Rat // weight with no standing preference left
	Candidates []*CandidateState
	Rounds     []ir.Round
	Complete   bool

	ballots []ir.Ballot
	index   map[ir.CandidateID]*CandidateState
	elected int
}

// NewTallyState validates an election and deals every valid ballot to its
// first preference.
//
// Returns an invalid input error for a bad seat count, an empty or
// duplicated candidate list, no ballots, or a ballot that names an unknown
// candidate or repeats one.
func NewTallyState(election ir.Election, seats int, formula QuotaFormula, tieBreak TieBreak) (*TallyState, error) {
	if seats < 1 {
		return nil, NewInvalidInputError("seats must be at least 1, got %d", seats)
	}
	if len(election.Candidates) == 0 {
		return nil, NewInvalidInputError("election has no candidates")
	}
	if len(election.Ballots) == 0 {
		return nil, NewInvalidInputError("election has no ballots")
	}

	s := &TallyState{
		Seats:      seats,
		TieBreak:   tieBreak,
		Total:      new(big.Rat),
		Exhausted:  new(big.Rat),
		Candidates: make([]*CandidateState, 0, len(election.Candidates)),
		ballots:    election.Ballots,
		index:      make(map[ir.CandidateID]*CandidateState, len(election.Candidates)),
	}

	for _, c := range election.Candidates {
		if c.ID == "" {
			return nil, NewInvalidInputError("candidate with empty id")
		}
		if _, dup := s.index[c.ID]; dup {
			err := NewInvalidInputError("duplicate candidate id")
			err.Candidate = c.ID
			return nil, err
		}
		cs := &CandidateState{ID: c.ID, Status: ir.StatusStanding, Votes: new(big.Rat)}
		s.Candidates = append(s.Candidates, cs)
		s.index[c.ID] = cs
	}

	for i, b := range election.Ballots {
		if err := s.checkBallot(i, b); err != nil {
			return nil, err
		}
	}

	one := big.NewRat(1, 1)
	for i, b := range election.Ballots {
		if len(b) == 0 {
			continue
		}
		s.Total.Add(s.Total, one)
		s.place(Portion{Ballot: i, Cursor: 0, Weight: one})
	}

	q, err := ComputeQuota(formula, s.Total, seats)
	if err != nil {
		return nil, err
	}
	s.Quota = q
	return s, nil
}

func (s *TallyState) checkBallot(i int, b ir.Ballot) error {
	seen := make(map[ir.CandidateID]bool, len(b))
	for _, id := range b {
		if _, ok := s.index[id]; !ok {
			err := NewInvalidInputError("ballot %d ranks unknown candidate", i)
			err.Candidate = id
			return err.withBallot(i)
		}
		if seen[id] {
			err := NewInvalidInputError("ballot %d ranks candidate more than once", i)
			err.Candidate = id
			return err.withBallot(i)
		}
		seen[id] = true
	}
	return nil
}

// place assigns p to the first standing preference at or after its cursor,
// or exhausts it.
func (s *TallyState) place(p Portion) {
	b := s.ballots[p.Ballot]
	for ; p.Cursor < len(b); p.Cursor++ {
		c := s.index[b[p.Cursor]]
		if c.Status == ir.StatusStanding {
			c.portions = append(c.portions, p)
			return
		}
	}
	s.Exhausted.Add(s.Exhausted, p.Weight)
}

// tabulate recomputes every standing candidate's total from its portions.
func (s *TallyState) tabulate() {
	for _, c := range s.Candidates {
		if c.Status != ir.StatusStanding {
			continue
		}
		total := new(big.Rat)
		for _, p := range c.portions {
			total.Add(total, p.Weight)
		}
		c.Votes = total
		c.history = append(c.history, total)
	}
}

// Standing returns the standing candidates in election order.
func (s *TallyState) Standing() []*CandidateState {
	var out []*CandidateState
	for _, c := range s.Candidates {
		if c.Status == ir.StatusStanding {
			out = append(out, c)
		}
	}
	return out
}

// Elected returns the elected candidates in rank order.
func (s *TallyState) Elected() []*CandidateState {
	var out []*CandidateState
	for _, c := range s.Candidates {
		if c.Status == ir.StatusElected {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *CandidateState) int { return a.Rank - b.Rank })
	return out
}

// ElectedCount returns the number of seats filled so far.
func (s *TallyState) ElectedCount() int {
	return s.elected
}

// Candidate looks up a candidate's state by ID.
func (s *TallyState) Candidate(id ir.CandidateID) (*CandidateState, bool) {
	c, ok := s.index[id]
	return c, ok
}

// Accounted sums the weight held by standing candidates, the totals kept
// by elected candidates and the exhausted weight. It equals Total at every
// point of a count.
func (s *TallyState) Accounted() *big.Rat {
	sum := new(big.Rat).Set(s.Exhausted)
	for _, c := range s.Candidates {
		switch c.Status {
		case ir.StatusStanding:
			for _, p := range c.portions {
				sum.Add(sum, p.Weight)
			}
		case ir.StatusElected:
			sum.Add(sum, c.Votes)
		}
	}
	return sum
}

// done reports whether the count can stop: every seat is filled, or the
// standing candidates can no more than fill what is left.
func (s *TallyState) done() bool {
	if s.elected >= s.Seats {
		return true
	}
	return s.elected+len(s.Standing()) <= s.Seats
}

// finished reports whether counting stops after a tabulation. Quota
// attainment is checked before the exhaustion rule, so a standing
// candidate at or above the quota is elected in a round of its own.
func (s *TallyState) finished() bool {
	if s.elected >= s.Seats {
		return true
	}
	return len(s.quotaReached()) == 0 && s.done()
}

// quotaReached returns the standing candidates at or above the quota,
// highest first, capped at the open seats.
func (s *TallyState) quotaReached() []*CandidateState {
	var reached []*CandidateState
	for _, c := range s.ranked(s.Standing()) {
		if s.Quota.Reached(c.Votes) {
			reached = append(reached, c)
		}
	}
	if open := s.Seats - s.elected; len(reached) > open {
		reached = reached[:open]
	}
	return reached
}

// ranked returns cs sorted by descending total under the tie-break policy.
func (s *TallyState) ranked(cs []*CandidateState) []*CandidateState {
	out := slices.Clone(cs)
	slices.SortFunc(out, s.TieBreak.compare)
	return out
}

func (s *TallyState) elect(c *CandidateState, round int) {
	s.elected++
	c.Status = ir.StatusElected
	c.Rank = s.elected
	c.ElectedRound = round
	c.ElectedVotes = new(big.Rat).Set(c.Votes)
}

// transferSurplus moves the part of c's total above the quota to the next
// standing preferences. c keeps exactly the quota.
func (s *TallyState) transferSurplus(c *CandidateState) {
	portions := c.portions
	c.portions = nil

	surplus := new(big.Rat).Sub(c.Votes, s.Quota.Value)
	if surplus.Sign() <= 0 {
		return
	}
	factor := new(big.Rat).Quo(surplus, c.Votes)
	for _, p := range portions {
		s.place(Portion{
			Ballot: p.Ballot,
			Cursor: p.Cursor + 1,
			Weight: new(big.Rat).Mul(p.Weight, factor),
		})
	}
	c.Votes = new(big.Rat).Set(s.Quota.Value)
}

// eliminate removes c from the count. Its portions stay put until
// transferEliminated so the round snapshot still shows its total.
func (s *TallyState) eliminate(c *CandidateState) {
	c.Status = ir.StatusEliminated
}

// transferEliminated moves an eliminated candidate's portions on at
// unchanged weight.
func (s *TallyState) transferEliminated(c *CandidateState) {
	portions := c.portions
	c.portions = nil
	for _, p := range portions {
		s.place(Portion{Ballot: p.Ballot, Cursor: p.Cursor + 1, Weight: p.Weight})
	}
	c.Votes = new(big.Rat)
}

// snapshot records the current round. Totals are as tabulated, before any
// of the round's transfers.
func (s *TallyState) snapshot(round int, elected []ir.CandidateID, eliminated ir.CandidateID) ir.Round {
	r := ir.Round{
		Number:     round,
		Tallies:    make([]ir.CandidateTally, len(s.Candidates)),
		Elected:    elected,
		Eliminated: eliminated,
		Exhausted:  s.Exhausted.RatString(),
	}
	for i, c := range s.Candidates {
		r.Tallies[i] = ir.CandidateTally{
			Candidate: c.ID,
			Votes:     c.Votes.RatString(),
			Status:    c.Status,
		}
	}
	s.Rounds = append(s.Rounds, r)
	return r
}
