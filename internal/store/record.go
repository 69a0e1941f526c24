package store

import (
	"fmt"

	"github.com/roach88/stv/internal/ir"
)

// NewTallyRecord assembles a record for WriteTally, computing the
// election and result hashes. ID and Seq are left for the store to assign.
func NewTallyRecord(e ir.Election, cfg ir.TallyConfig, result ir.Result) (ir.TallyRecord, error) {
	electionHash, err := ir.ElectionHash(e, cfg)
	if err != nil {
		return ir.TallyRecord{}, fmt.Errorf("new tally record: %w", err)
	}
	resultHash, err := ir.ResultHash(result)
	if err != nil {
		return ir.TallyRecord{}, fmt.Errorf("new tally record: %w", err)
	}
	return ir.TallyRecord{
		Election:      e,
		Config:        cfg,
		Result:        result,
		ElectionHash:  electionHash,
		ResultHash:    resultHash,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}, nil
}
