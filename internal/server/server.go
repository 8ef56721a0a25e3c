// Package server exposes syntheses, job offer matching and candidate
// evaluation over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/diagnostics"
	"github.com/seeg/onehcm/internal/evaluation"
	"github.com/seeg/onehcm/internal/logger"
	"github.com/seeg/onehcm/internal/matching"
	"github.com/seeg/onehcm/internal/store"
	"github.com/seeg/onehcm/internal/synthesis"
)

const (
	maxBodyBytes    = 10 << 20
	shutdownTimeout = 15 * time.Second
)

// SynthesisLoader aggregates the evaluations of an application.
type SynthesisLoader interface {
	Load(ctx context.Context, applicationID uuid.UUID) (*synthesis.Data, error)
}

// ApplicationReader looks up applications. A nil application means not found.
type ApplicationReader interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*store.Application, error)
}

// Deps are the collaborators behind the routes. Applications and Recorder are optional.
type Deps struct {
	Synthesis    SynthesisLoader
	Applications ApplicationReader
	Matcher      *matching.Matcher
	Offers       matching.OfferSource
	Evaluator    *evaluation.Service
	Recorder     *diagnostics.Recorder
	Logger       *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	deps      Deps
	logger    *zap.Logger
	validator *validator.Validate
	handler   http.Handler
}

func New(deps Deps) *Server {
	if deps.Recorder == nil {
		deps.Recorder = diagnostics.NewRecorder(0)
	}

	s := &Server{
		deps:      deps,
		logger:    logger.WithFields(deps.Logger, zap.String("component", "server")),
		validator: validator.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /applications/{id}/synthesis", s.handleSynthesis)
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("POST /evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /job-offers/refresh", s.handleRefreshJobOffers)
	mux.HandleFunc("GET /diagnostics", s.handleDiagnostics)

	s.handler = s.withLogging(mux)
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		stop := s.deps.Recorder.Track(r.Method + " " + r.URL.Path)
		start := time.Now()

		next.ServeHTTP(rec, r)

		stop()
		s.logger.Debug("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("write response failed", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}
