// Package server exposes the reporting read models over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"SettleReporting/internal/model"
	"SettleReporting/internal/observability"
	"SettleReporting/internal/query"
)

type Server struct {
	queries *query.Service
	health  *observability.HealthChecker
	log     zerolog.Logger
}

func New(queries *query.Service, health *observability.HealthChecker, log zerolog.Logger) *Server {
	return &Server{
		queries: queries,
		health:  health,
		log:     log.With().Str("subcomponent", "http").Logger(),
	}
}

// Router builds the API route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/dfsp-settlement-statement", s.handleSettlementStatement)
		r.Get("/settlement-matrices", s.handleListMatrices)
		r.Get("/settlement-matrices/{id}", s.handleGetMatrix)
		r.Get("/transfers", s.handleListTransfers)
		r.Get("/transfers/{id}", s.handleGetTransfer)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	failures := s.health.Ready(r.Context())
	if len(failures) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	detail := make(map[string]string, len(failures))
	for name, err := range failures {
		detail[name] = err.Error()
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{
		"status":   "not ready",
		"failures": detail,
	})
}

func (s *Server) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
	rec, err := s.queries.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	transfers, err := s.queries.ListTransfers(r.Context(),
		q.Get("payerFspId"), q.Get("payeeFspId"), intParam(q.Get("limit")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if transfers == nil {
		transfers = []model.TransferRecord{}
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (s *Server) handleGetMatrix(w http.ResponseWriter, r *http.Request) {
	matrix, err := s.queries.GetMatrix(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

func (s *Server) handleListMatrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matrices, err := s.queries.ListMatrices(r.Context(), q.Get("state"), intParam(q.Get("limit")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if matrices == nil {
		matrices = []model.SettlementMatrix{}
	}
	writeJSON(w, http.StatusOK, matrices)
}

// writeError maps the store error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ListenAndServe runs the API server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
