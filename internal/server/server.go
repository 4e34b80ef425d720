// Package server exposes the job engine over an HTTP JSON API, with a
// websocket watch endpoint for live job progress and a Prometheus metrics
// endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/10thony/CobecDev-sub005/internal/db"
	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/metrics"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

// LeadLister provides the lead read model. *db.Client is the production
// implementation.
type LeadLister interface {
	ListLeads(ctx context.Context, activeOnly bool) ([]models.Lead, error)
}

// Server is the HTTP API server.
type Server struct {
	engine  *engine.Controller
	leads   LeadLister
	metrics *metrics.Collector
	log     *slog.Logger
	mux     *http.ServeMux
	httpSrv *http.Server
}

func New(ctrl *engine.Controller, leads LeadLister, mc *metrics.Collector, addr string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		engine:  ctrl,
		leads:   leads,
		metrics: mc,
		log:     log,
		mux:     http.NewServeMux(),
	}
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // websocket watch streams indefinitely
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/jobs", s.createJob)
	s.mux.HandleFunc("GET /api/jobs", s.listJobs)
	s.mux.HandleFunc("GET /api/jobs/{id}", s.getJob)
	s.mux.HandleFunc("DELETE /api/jobs/{id}", s.deleteJob)
	s.mux.HandleFunc("POST /api/jobs/{id}/start", s.startJob)
	s.mux.HandleFunc("POST /api/jobs/{id}/resume", s.resumeJob)
	s.mux.HandleFunc("POST /api/jobs/{id}/cancel", s.cancelJob)
	s.mux.HandleFunc("GET /api/jobs/{id}/watch", s.watchJob)
	s.mux.HandleFunc("GET /api/jobs/{id}/review", s.listReview)
	s.mux.HandleFunc("POST /api/review/{id}/accept", s.acceptReview)
	s.mux.HandleFunc("POST /api/review/{id}/reject", s.rejectReview)
	s.mux.HandleFunc("GET /api/leads", s.listLeads)
	s.mux.HandleFunc("GET /api/status", s.status)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Handler exposes the route mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("starting API server", "addr", s.httpSrv.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("write response failed", "error", err)
	}
}

// writeError maps engine and store errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *engine.ValidationError
	var serr *engine.InvalidStateError

	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		code = http.StatusBadRequest
	case errors.As(err, &serr):
		code = http.StatusConflict
	case errors.Is(err, db.ErrAlreadyResolved):
		code = http.StatusConflict
	case errors.Is(err, db.ErrNotFound):
		code = http.StatusNotFound
	}

	if code == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
