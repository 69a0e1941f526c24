package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/stv/internal/ir"
)

// marshalElection converts an election to canonical JSON TEXT for storage.
func marshalElection(e ir.Election) (string, error) {
	data, err := ir.MarshalCanonicalElection(e)
	if err != nil {
		return "", fmt.Errorf("marshal election: %w", err)
	}
	return string(data), nil
}

// unmarshalElection converts stored canonical JSON back to an election.
func unmarshalElection(data string) (ir.Election, error) {
	var e ir.Election
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return ir.Election{}, fmt.Errorf("unmarshal election: %w", err)
	}
	for i, b := range e.Ballots {
		if b == nil {
			e.Ballots[i] = ir.Ballot{}
		}
	}
	return e, nil
}

// marshalRound converts a round snapshot to canonical JSON TEXT.
func marshalRound(r ir.Round) (string, error) {
	data, err := ir.MarshalCanonical(ir.RoundsObject([]ir.Round{r})[0])
	if err != nil {
		return "", fmt.Errorf("marshal round %d: %w", r.Number, err)
	}
	return string(data), nil
}

// unmarshalRound converts stored canonical JSON back to a round snapshot.
// An empty elected list decodes to nil, matching what the engine produces.
func unmarshalRound(data string) (ir.Round, error) {
	var r ir.Round
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return ir.Round{}, fmt.Errorf("unmarshal round: %w", err)
	}
	if len(r.Elected) == 0 {
		r.Elected = nil
	}
	return r, nil
}
