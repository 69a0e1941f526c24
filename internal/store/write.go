package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/stv/internal/ir"
)

// WriteTally stores a tally with its winners and round snapshots in one
// transaction and returns the record with ID and Seq filled in.
//
// An empty rec.ID is replaced by the store's IDGenerator. Seq is always
// assigned by the store as one more than the highest stored seq, so
// insertion order is recoverable without timestamps.
//
// The election payload and every round are serialized to canonical JSON
// per RFC 8785 for deterministic replay.
func (s *Store) WriteTally(ctx context.Context, rec ir.TallyRecord) (ir.TallyRecord, error) {
	if rec.ID == "" {
		rec.ID = s.ids.Generate()
	}

	electionJSON, err := marshalElection(rec.Election)
	if err != nil {
		return ir.TallyRecord{}, fmt.Errorf("write tally: %w", err)
	}
	roundsJSON := make([]string, len(rec.Result.Rounds))
	for i, round := range rec.Result.Rounds {
		roundsJSON[i], err = marshalRound(round)
		if err != nil {
			return ir.TallyRecord{}, fmt.Errorf("write tally: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ir.TallyRecord{}, fmt.Errorf("write tally: begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM tallies`).Scan(&rec.Seq); err != nil {
		return ir.TallyRecord{}, fmt.Errorf("write tally: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tallies
		(id, seq, title, election, seats, quota_formula, tie_break, quota, total_votes, exhausted,
		 election_hash, result_hash, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Seq,
		rec.Election.Title,
		electionJSON,
		rec.Config.Seats,
		rec.Config.Quota,
		rec.Config.TieBreak,
		rec.Result.Quota,
		rec.Result.TotalVotes,
		rec.Result.Exhausted,
		rec.ElectionHash,
		rec.ResultHash,
		rec.EngineVersion,
		rec.IRVersion,
	)
	if err != nil {
		return ir.TallyRecord{}, fmt.Errorf("write tally: %w", err)
	}

	if err := writeWinners(ctx, tx, rec.ID, rec.Result.Winners); err != nil {
		return ir.TallyRecord{}, err
	}

	for i, round := range rec.Result.Rounds {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rounds (tally_id, number, snapshot)
			VALUES (?, ?, ?)
		`, rec.ID, round.Number, roundsJSON[i])
		if err != nil {
			return ir.TallyRecord{}, fmt.Errorf("write round %d: %w", round.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ir.TallyRecord{}, fmt.Errorf("write tally: commit: %w", err)
	}
	return rec, nil
}

func writeWinners(ctx context.Context, tx *sql.Tx, tallyID string, winners []ir.Winner) error {
	for _, w := range winners {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO winners (tally_id, rank, candidate, votes, round, by_exhaustion)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			tallyID,
			w.Rank,
			string(w.Candidate),
			w.Votes,
			w.Round,
			boolToInt(w.ByExhaustion),
		)
		if err != nil {
			return fmt.Errorf("write winner %s: %w", w.Candidate, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
