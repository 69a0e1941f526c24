package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainElection = "stv/election/v1"
	DomainResult   = "stv/result/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ElectionHash computes the content-addressed identity of a tally's inputs.
// Two tallies with the same hash are guaranteed to produce the same result.
//
// The title is excluded: renaming an election does not change its count.
func ElectionHash(e Election, cfg TallyConfig) (string, error) {
	obj := map[string]any{
		"candidates": candidatesObject(e.Candidates),
		"ballots":    ballotsObject(e.Ballots),
		"config":     configObject(cfg),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ElectionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainElection, canonical), nil
}

// ResultHash computes the content-addressed identity of a tally outcome,
// including every round snapshot. Replaying a stored election must
// reproduce this hash exactly.
func ResultHash(r Result) (string, error) {
	canonical, err := MarshalCanonicalResult(r)
	if err != nil {
		return "", fmt.Errorf("ResultHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// MarshalCanonicalElection encodes an election (title included) as
// canonical JSON for storage.
func MarshalCanonicalElection(e Election) ([]byte, error) {
	obj := map[string]any{
		"candidates": candidatesObject(e.Candidates),
		"ballots":    ballotsObject(e.Ballots),
	}
	if e.Title != "" {
		obj["title"] = e.Title
	}
	return MarshalCanonical(obj)
}

// MarshalCanonicalResult encodes a result as canonical JSON.
func MarshalCanonicalResult(r Result) ([]byte, error) {
	return MarshalCanonical(ResultObject(r))
}

// ResultObject converts a result into a canonical-JSON-ready value.
func ResultObject(r Result) map[string]any {
	winners := make([]any, len(r.Winners))
	for i, w := range r.Winners {
		winners[i] = map[string]any{
			"candidate":     w.Candidate,
			"rank":          w.Rank,
			"votes":         w.Votes,
			"round":         w.Round,
			"by_exhaustion": w.ByExhaustion,
		}
	}
	return map[string]any{
		"quota":       r.Quota,
		"total_votes": r.TotalVotes,
		"exhausted":   r.Exhausted,
		"winners":     winners,
		"rounds":      RoundsObject(r.Rounds),
	}
}

// RoundsObject converts round snapshots into canonical-JSON-ready values.
func RoundsObject(rounds []Round) []any {
	out := make([]any, len(rounds))
	for i, round := range rounds {
		tallies := make([]any, len(round.Tallies))
		for j, t := range round.Tallies {
			tallies[j] = map[string]any{
				"candidate": t.Candidate,
				"votes":     t.Votes,
				"status":    string(t.Status),
			}
		}
		obj := map[string]any{
			"number":    round.Number,
			"tallies":   tallies,
			"elected":   idsObject(round.Elected),
			"exhausted": round.Exhausted,
		}
		if round.Eliminated != "" {
			obj["eliminated"] = round.Eliminated
		}
		out[i] = obj
	}
	return out
}

func candidatesObject(candidates []Candidate) []any {
	out := make([]any, len(candidates))
	for i, c := range candidates {
		out[i] = map[string]any{"id": c.ID, "name": c.Name}
	}
	return out
}

func ballotsObject(ballots []Ballot) []any {
	out := make([]any, len(ballots))
	for i, b := range ballots {
		out[i] = idsObject(b)
	}
	return out
}

func idsObject(ids []CandidateID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func configObject(cfg TallyConfig) map[string]any {
	return map[string]any{
		"seats":     cfg.Seats,
		"quota":     cfg.Quota,
		"tie_break": cfg.TieBreak,
	}
}
