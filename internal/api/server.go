// Package api provides the local HTTP server for dayledger.
// It exposes the ledger to a UI on loopback and, optionally, /metrics.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dayledger/dayledger/internal/app/export"
	"github.com/dayledger/dayledger/internal/app/ledger"
	"github.com/dayledger/dayledger/internal/domain"
)

// Server is the dayledger HTTP API server.
type Server struct {
	ledger         *ledger.Ledger
	logger         *slog.Logger
	metricsEnabled bool
}

// NewServer creates a new API server over l.
func NewServer(l *ledger.Ledger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{ledger: l, logger: logger.With("component", "api")}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/ledger", s.handleLedger)
		r.Get("/score", s.handleScore)

		r.Put("/objectives", s.handleReplaceObjectives)
		r.Post("/objectives/{id}/complete", s.handleCompleteObjective)

		r.Put("/activities", s.handleReplaceActivities)
		r.Post("/activities/{index}/apply", s.handleApplyActivity)
		r.Delete("/activities/applied/{position}", s.handleUndoActivity)

		r.Post("/adjustments", s.handleAddAdjustment)
		r.Delete("/adjustments/{position}", s.handleRemoveAdjustment)

		r.Post("/day/check", s.handleDayCheck)
		r.Post("/day/end", s.handleDayEnd)

		r.Get("/history", s.handleHistory)
		r.Get("/export", s.handleExport)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Responses ──────────────────────────────────────────────────────────────

// ledgerResponse is the document plus derived scores. rolling_total includes
// the open day; the embedded rollingTotal covers closed days only.
type ledgerResponse struct {
	domain.Document
	DailyScore   float64 `json:"daily_score"`
	RollingTotal float64 `json:"rolling_total"`
}

type scoreResponse struct {
	Completed    int     `json:"completed"`
	DailyScore   float64 `json:"daily_score"`
	RollingTotal float64 `json:"rolling_total"`
}

func (s *Server) ledgerView() ledgerResponse {
	doc := s.ledger.Snapshot()
	return ledgerResponse{
		Document:     doc,
		DailyScore:   doc.DailyScore(),
		RollingTotal: doc.ProjectedTotal(),
	}
}

// ─── Handlers ───────────────────────────────────────────────────────────────

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledgerView())
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	doc := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, scoreResponse{
		Completed:    len(doc.CompletedToday),
		DailyScore:   doc.DailyScore(),
		RollingTotal: doc.ProjectedTotal(),
	})
}

func (s *Server) handleCompleteObjective(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := s.ledger.CompleteObjective(r.Context(), id); err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledgerView())
}

func (s *Server) handleReplaceObjectives(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Labels []string `json:"labels"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.ledger.ReplaceObjectiveCatalog(r.Context(), req.Labels); err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledgerView())
}

func (s *Server) handleApplyActivity(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathInt(w, r, "index")
	if !ok {
		return
	}
	app, err := s.ledger.ApplyActivity(r.Context(), idx)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleUndoActivity(w http.ResponseWriter, r *http.Request) {
	pos, ok := pathInt(w, r, "position")
	if !ok {
		return
	}
	if err := s.ledger.UndoActivity(r.Context(), pos); err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledgerView())
}

func (s *Server) handleReplaceActivities(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Activities []domain.Activity `json:"activities"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.ledger.ReplaceActivityCatalog(r.Context(), req.Activities); err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledgerView())
}

func (s *Server) handleAddAdjustment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount *float64 `json:"amount"`
		Reason string   `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}
	if err := s.ledger.AddAdjustment(r.Context(), *req.Amount, req.Reason); err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.ledgerView())
}

func (s *Server) handleRemoveAdjustment(w http.ResponseWriter, r *http.Request) {
	pos, ok := pathInt(w, r, "position")
	if !ok {
		return
	}
	if err := s.ledger.RemoveAdjustment(r.Context(), pos); err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledgerView())
}

func (s *Server) handleDayCheck(w http.ResponseWriter, r *http.Request) {
	rolled, err := s.ledger.CheckRollover(r.Context(), s.ledger.Now())
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rolled_over": rolled,
		"ledger":      s.ledgerView(),
	})
}

func (s *Server) handleDayEnd(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.Rollover(r.Context(), s.ledger.Now())
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	// rec is nil when the closed day had nothing in it.
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record": rec,
		"ledger": s.ledgerView(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": s.ledger.Snapshot().History,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc := s.ledger.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, export.FileName(s.ledger.Now())))
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, doc); err != nil {
		s.logger.Error("export write failed", "err", err)
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// statusFor maps ledger errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidIndex),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrEmptyCatalog),
		errors.Is(err, domain.ErrInvalidActivity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("ledger operation failed", "err", err)
	}
	writeError(w, status, err.Error())
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, raw))
		return 0, false
	}
	return n, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for a local UI.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
