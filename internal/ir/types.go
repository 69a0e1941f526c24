package ir

// CandidateID is the opaque identifier of a candidate, unique within an election.
type CandidateID string

// Candidate is a named contestant. The display name belongs to ingestion;
// the engine only ever looks at ID.
type Candidate struct {
	ID   CandidateID `json:"id" yaml:"id"`
	Name string      `json:"name" yaml:"name"`
}

// DisplayName returns Name, falling back to the identifier.
func (c Candidate) DisplayName() string {
	if c.Name == "" {
		return string(c.ID)
	}
	return c.Name
}

// Ballot is one voter's preference order, highest preference first.
// A ballot may list fewer candidates than stand (partial ranking).
type Ballot []CandidateID

// Election is the complete input to a tally: the candidate list in
// ingestion order and every ballot cast.
type Election struct {
	Title      string      `json:"title,omitempty"`
	Candidates []Candidate `json:"candidates"`
	Ballots    []Ballot    `json:"ballots"`
}

// Candidate looks up a candidate by ID.
func (e Election) Candidate(id CandidateID) (Candidate, bool) {
	for _, c := range e.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

// Names returns a map of candidate ID to display name.
func (e Election) Names() map[CandidateID]string {
	names := make(map[CandidateID]string, len(e.Candidates))
	for _, c := range e.Candidates {
		names[c.ID] = c.DisplayName()
	}
	return names
}

// TallyConfig selects the counting rules for one tally.
type TallyConfig struct {
	Seats    int    `json:"seats"`
	Quota    string `json:"quota"`     // "droop", "hare", "hagenbach-bischoff", "imperiali"
	TieBreak string `json:"tie_break"` // "lexical", "backward"
}

// CandidateStatus is the lifecycle state of a candidate during a count.
type CandidateStatus string

const (
	StatusStanding   CandidateStatus = "standing"
	StatusElected    CandidateStatus = "elected"
	StatusEliminated CandidateStatus = "eliminated"
)

// CandidateTally is one candidate's position at the end of a round.
type CandidateTally struct {
	Candidate CandidateID     `json:"candidate"`
	Votes     string          `json:"votes"` // exact rational, big.Rat.RatString form
	Status    CandidateStatus `json:"status"`
}

// Round is a snapshot of one iteration of the count, taken after the
// round's elections or elimination were decided but before transfers.
type Round struct {
	Number     int              `json:"number"`
	Tallies    []CandidateTally `json:"tallies"` // candidate order of the election
	Elected    []CandidateID    `json:"elected,omitempty"`
	Eliminated CandidateID      `json:"eliminated,omitempty"`
	Exhausted  string           `json:"exhausted"` // weight exhausted so far, before this round's transfers
}

// Winner is one elected seat.
type Winner struct {
	Candidate    CandidateID `json:"candidate"`
	Rank         int         `json:"rank"` // 1-indexed
	Votes        string      `json:"votes"`
	Round        int         `json:"round"` // 0 when elected by exhaustion before any round
	ByExhaustion bool        `json:"by_exhaustion,omitempty"`
}

// Result is the outcome of a completed tally.
type Result struct {
	Quota      string   `json:"quota"`
	TotalVotes string   `json:"total_votes"`
	Exhausted  string   `json:"exhausted"`
	Winners    []Winner `json:"winners"`
	Rounds     []Round  `json:"rounds"`
}

// WinnerIDs returns the winning candidate IDs in rank order.
func (r Result) WinnerIDs() []CandidateID {
	ids := make([]CandidateID, len(r.Winners))
	for i, w := range r.Winners {
		ids[i] = w.Candidate
	}
	return ids
}

// EliminationOrder returns eliminated candidates in the order they fell.
func (r Result) EliminationOrder() []CandidateID {
	var ids []CandidateID
	for _, round := range r.Rounds {
		if round.Eliminated != "" {
			ids = append(ids, round.Eliminated)
		}
	}
	return ids
}

// TallyRecord is a persisted tally: its inputs, configuration and outcome.
type TallyRecord struct {
	ID            string      `json:"id"`
	Seq           int64       `json:"seq"` // logical insertion order, assigned by the store
	Election      Election    `json:"election"`
	Config        TallyConfig `json:"config"`
	Result        Result      `json:"result"`
	ElectionHash  string      `json:"election_hash"`
	ResultHash    string      `json:"result_hash"`
	EngineVersion string      `json:"engine_version"`
	IRVersion     string      `json:"ir_version"`
}
