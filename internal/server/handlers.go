package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/stv/internal/ballot"
	"github.com/roach88/stv/internal/engine"
	"github.com/roach88/stv/internal/ir"
	"github.com/roach88/stv/internal/store"
)

// TallyResponse is the JSON body describing one counted tally.
type TallyResponse struct {
	ID           string         `json:"id,omitempty"`
	Seq          int64          `json:"seq,omitempty"`
	Title        string         `json:"title,omitempty"`
	Config       ir.TallyConfig `json:"config"`
	ElectionHash string         `json:"election_hash"`
	ResultHash   string         `json:"result_hash"`
	Result       ir.Result      `json:"result"`
}

func newTallyResponse(rec ir.TallyRecord) TallyResponse {
	return TallyResponse{
		ID:           rec.ID,
		Seq:          rec.Seq,
		Title:        rec.Election.Title,
		Config:       rec.Config,
		ElectionHash: rec.ElectionHash,
		ResultHash:   rec.ResultHash,
		Result:       rec.Result,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			ErrorJSON(w, http.StatusServiceUnavailable, "", fmt.Sprintf("store unavailable: %v", err))
			return
		}
	}
	JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateTally(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorJSON(w, http.StatusRequestEntityTooLarge, "", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		ErrorJSON(w, http.StatusBadRequest, "", fmt.Sprintf("failed to read request body: %v", err))
		return
	}

	loaded, err := ballot.Decode(data, ballot.FormatJSON, "request", ballot.Options{})
	if err != nil {
		s.metrics.Tallies.WithLabelValues(outcomeOf(err)).Inc()
		s.tallyError(w, err)
		return
	}

	cfg := loaded.Config
	if cfg.Seats == 0 {
		cfg.Seats = engine.DefaultSeats
	}

	start := time.Now()
	rec, err := s.count(loaded.Election, cfg)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.observe(outcomeOf(err), 0, elapsed)
		s.tallyError(w, err)
		return
	}
	s.metrics.observe(OutcomeOK, len(rec.Result.Rounds), elapsed)

	if s.store == nil {
		JSONResponse(w, http.StatusOK, newTallyResponse(rec))
		return
	}

	stored, err := s.store.WriteTally(r.Context(), rec)
	if err != nil {
		s.logger.Error("failed to store tally", "error", err)
		ErrorJSON(w, http.StatusInternalServerError, "", "failed to store tally")
		return
	}
	w.Header().Set("Location", "/tallies/"+stored.ID)
	JSONResponse(w, http.StatusCreated, newTallyResponse(stored))
}

// count runs one tally and wraps it as a record ready to store.
func (s *Server) count(election ir.Election, cfg ir.TallyConfig) (ir.TallyRecord, error) {
	eng, err := engine.NewFromConfig(cfg, engine.WithLogger(s.logger))
	if err != nil {
		return ir.TallyRecord{}, err
	}
	result, err := eng.Tally(election)
	if err != nil {
		return ir.TallyRecord{}, err
	}
	return store.NewTallyRecord(election, eng.Config(), result)
}

func (s *Server) handleListTallies(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	tallies, err := s.store.ListTallies(r.Context())
	if err != nil {
		s.logger.Error("failed to list tallies", "error", err)
		ErrorJSON(w, http.StatusInternalServerError, "", "failed to list tallies")
		return
	}
	JSONResponse(w, http.StatusOK, tallies)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.store.ReadTally(r.Context(), id)
	if err != nil {
		s.readError(w, id, err)
		return
	}
	JSONResponse(w, http.StatusOK, newTallyResponse(rec))
}

func (s *Server) handleGetRounds(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	rounds, err := s.store.ReadRounds(r.Context(), id)
	if err != nil {
		s.readError(w, id, err)
		return
	}
	JSONResponse(w, http.StatusOK, rounds)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		ErrorJSON(w, http.StatusServiceUnavailable, "", "no tally store configured")
		return false
	}
	return true
}

func (s *Server) readError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		ErrorJSON(w, http.StatusNotFound, "", fmt.Sprintf("tally %s not found", id))
		return
	}
	s.logger.Error("failed to read tally", "id", id, "error", err)
	ErrorJSON(w, http.StatusInternalServerError, "", "failed to read tally")
}

// tallyError replies to a failed count. Errors that carry a tally code
// are the caller's input and answer 422; anything else is a bad request.
func (s *Server) tallyError(w http.ResponseWriter, err error) {
	code := engine.CodeOf(err)
	if code == "" {
		ErrorJSON(w, http.StatusBadRequest, "", err.Error())
		return
	}
	ErrorJSON(w, http.StatusUnprocessableEntity, string(code), err.Error())
}

func outcomeOf(err error) string {
	switch engine.CodeOf(err) {
	case engine.ErrCodeInvalidInput:
		return OutcomeInvalidInput
	case engine.ErrCodeAmbiguous:
		return OutcomeAmbiguous
	case engine.ErrCodeStalled:
		return OutcomeStalled
	default:
		return OutcomeError
	}
}
