package store

import (
	"context"
	"fmt"
)

// LastSeq returns the highest seq number used in the store, or 0 when the
// store is empty.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM tallies
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// ListTallyIDs returns every stored tally ID in insertion order.
// Used by replay to enumerate all tallies.
func (s *Store) ListTallyIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT id FROM tallies
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// FindByElectionHash returns the IDs of tallies counted from identical
// inputs, in insertion order. Every one of them must carry the same
// result hash.
func (s *Store) FindByElectionHash(ctx context.Context, electionHash string) ([]string, error) {
	return s.queryIDs(ctx, `
		SELECT id FROM tallies
		WHERE election_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, electionHash)
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tally ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tally id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tally ids: %w", err)
	}
	return ids, nil
}
