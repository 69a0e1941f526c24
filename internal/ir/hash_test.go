package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleElection() Election {
	return Election{
		Title: "Board",
		Candidates: []Candidate{
			{ID: "A", Name: "Alice"},
			{ID: "B", Name: "Bob"},
		},
		Ballots: []Ballot{{"A", "B"}, {"B"}},
	}
}

func TestElectionHashDeterministic(t *testing.T) {
	cfg := TallyConfig{Seats: 1, Quota: "droop", TieBreak: "lexical"}

	h1, err := ElectionHash(sampleElection(), cfg)
	require.NoError(t, err)
	h2, err := ElectionHash(sampleElection(), cfg)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestElectionHashIgnoresTitle(t *testing.T) {
	cfg := TallyConfig{Seats: 1, Quota: "droop", TieBreak: "lexical"}
	renamed := sampleElection()
	renamed.Title = "Another title"

	h1, err := ElectionHash(sampleElection(), cfg)
	require.NoError(t, err)
	h2, err := ElectionHash(renamed, cfg)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestElectionHashSensitiveToInputs(t *testing.T) {
	cfg := TallyConfig{Seats: 1, Quota: "droop", TieBreak: "lexical"}
	base, err := ElectionHash(sampleElection(), cfg)
	require.NoError(t, err)

	t.Run("seats", func(t *testing.T) {
		h, err := ElectionHash(sampleElection(), TallyConfig{Seats: 2, Quota: "droop", TieBreak: "lexical"})
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})

	t.Run("ballot order within a ballot", func(t *testing.T) {
		e := sampleElection()
		e.Ballots[0] = Ballot{"B", "A"}
		h, err := ElectionHash(e, cfg)
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})

	t.Run("quota formula", func(t *testing.T) {
		h, err := ElectionHash(sampleElection(), TallyConfig{Seats: 1, Quota: "hare", TieBreak: "lexical"})
		require.NoError(t, err)
		assert.NotEqual(t, base, h)
	})
}

func TestResultHashCoversRounds(t *testing.T) {
	r := Result{
		Quota:      "2",
		TotalVotes: "2",
		Exhausted:  "0",
		Winners:    []Winner{{Candidate: "A", Rank: 1, Votes: "2", Round: 1}},
		Rounds: []Round{{
			Number:    1,
			Tallies:   []CandidateTally{{Candidate: "A", Votes: "2", Status: StatusElected}},
			Elected:   []CandidateID{"A"},
			Exhausted: "0",
		}},
	}
	h1, err := ResultHash(r)
	require.NoError(t, err)

	r.Rounds[0].Tallies[0].Votes = "3"
	h2, err := ResultHash(r)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainElection, data), hashWithDomain(DomainResult, data))
}

func TestMarshalCanonicalElectionIncludesTitle(t *testing.T) {
	data, err := MarshalCanonicalElection(sampleElection())
	require.NoError(t, err)
	assert.Equal(t,
		`{"ballots":[["A","B"],["B"]],"candidates":[{"id":"A","name":"Alice"},{"id":"B","name":"Bob"}],"title":"Board"}`,
		string(data))
}
