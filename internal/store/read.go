package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/stv/internal/ir"
)

// ErrNotFound is returned when a tally ID is not in the store.
var ErrNotFound = errors.New("tally not found")

// TallySummary is one row of a tally listing.
type TallySummary struct {
	ID           string           `json:"id"`
	Seq          int64            `json:"seq"`
	Title        string           `json:"title"`
	Seats        int              `json:"seats"`
	Formula      string           `json:"formula"`
	Quota        string           `json:"quota"`
	TotalVotes   string           `json:"total_votes"`
	ElectionHash string           `json:"election_hash"`
	ResultHash   string           `json:"result_hash"`
	Winners      []ir.CandidateID `json:"winners"`
}

// ReadTally returns a stored tally with its full result.
// Returns ErrNotFound if no tally has the given ID.
func (s *Store) ReadTally(ctx context.Context, id string) (ir.TallyRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, election, seats, quota_formula, tie_break, quota, total_votes, exhausted,
		       election_hash, result_hash, engine_version, ir_version
		FROM tallies
		WHERE id = ?
	`, id)

	var (
		rec          ir.TallyRecord
		electionJSON string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Seq,
		&electionJSON,
		&rec.Config.Seats,
		&rec.Config.Quota,
		&rec.Config.TieBreak,
		&rec.Result.Quota,
		&rec.Result.TotalVotes,
		&rec.Result.Exhausted,
		&rec.ElectionHash,
		&rec.ResultHash,
		&rec.EngineVersion,
		&rec.IRVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.TallyRecord{}, fmt.Errorf("read tally %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.TallyRecord{}, fmt.Errorf("read tally %s: %w", id, err)
	}

	rec.Election, err = unmarshalElection(electionJSON)
	if err != nil {
		return ir.TallyRecord{}, fmt.Errorf("read tally %s: %w", id, err)
	}

	rec.Result.Winners, err = s.readWinners(ctx, id)
	if err != nil {
		return ir.TallyRecord{}, err
	}

	rec.Result.Rounds, err = s.readRounds(ctx, id)
	if err != nil {
		return ir.TallyRecord{}, err
	}

	return rec, nil
}

// ReadRounds returns the round snapshots of a stored tally in round order.
// Returns ErrNotFound if no tally has the given ID.
func (s *Store) ReadRounds(ctx context.Context, id string) ([]ir.Round, error) {
	exists, err := s.tallyExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("read rounds %s: %w", id, ErrNotFound)
	}
	return s.readRounds(ctx, id)
}

// ListTallies returns a summary of every stored tally.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListTallies(ctx context.Context) ([]TallySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, title, seats, quota_formula, quota, total_votes, election_hash, result_hash
		FROM tallies
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tallies: %w", err)
	}
	defer rows.Close()

	summaries := []TallySummary{}
	for rows.Next() {
		var t TallySummary
		if err := rows.Scan(&t.ID, &t.Seq, &t.Title, &t.Seats, &t.Formula, &t.Quota, &t.TotalVotes, &t.ElectionHash, &t.ResultHash); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		summaries = append(summaries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tallies: %w", err)
	}
	rows.Close()

	for i := range summaries {
		winners, err := s.readWinners(ctx, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		ids := make([]ir.CandidateID, len(winners))
		for j, w := range winners {
			ids[j] = w.Candidate
		}
		summaries[i].Winners = ids
	}

	return summaries, nil
}

func (s *Store) tallyExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tallies WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check tally %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) readWinners(ctx context.Context, id string) ([]ir.Winner, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate, rank, votes, round, by_exhaustion
		FROM winners
		WHERE tally_id = ?
		ORDER BY rank ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query winners: %w", err)
	}
	defer rows.Close()

	var winners []ir.Winner
	for rows.Next() {
		var (
			w            ir.Winner
			candidate    string
			byExhaustion int
		)
		if err := rows.Scan(&candidate, &w.Rank, &w.Votes, &w.Round, &byExhaustion); err != nil {
			return nil, fmt.Errorf("scan winner: %w", err)
		}
		w.Candidate = ir.CandidateID(candidate)
		w.ByExhaustion = byExhaustion != 0
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate winners: %w", err)
	}
	return winners, nil
}

func (s *Store) readRounds(ctx context.Context, id string) ([]ir.Round, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot
		FROM rounds
		WHERE tally_id = ?
		ORDER BY number ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}
	defer rows.Close()

	rounds := []ir.Round{}
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		round, err := unmarshalRound(snapshot)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return rounds, nil
}
