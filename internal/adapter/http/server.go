// Package http serves the worker's health, readiness and metrics endpoints,
// plus a synchronous generation API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/generator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the generation API. A nil Service disables it.
type Options struct {
	Service         *generator.Service
	GenerateTimeout time.Duration
	MaxRequestBytes int64
}

// Server exposes health, readiness, metrics and generation HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	opts       Options
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics
// routes, and /v1/backends and /v1/generate when a service is given.
func NewServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10*time.Second + opts.GenerateTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		opts:   opts,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	if opts.Service != nil {
		mux.HandleFunc("GET /v1/backends", s.handleBackends)
		mux.HandleFunc("POST /v1/generate", s.handleGenerate)
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type parameterView struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

type backendView struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  []parameterView `json:"parameters"`
}

func (s *Server) handleBackends(w http.ResponseWriter, _ *http.Request) {
	registry := s.opts.Service.Registry()
	out := make([]backendView, 0, len(registry.List()))
	for _, name := range registry.List() {
		b, err := registry.Get(name)
		if err != nil {
			continue
		}
		view := backendView{Name: name, Description: b.Description()}
		for _, p := range b.Schema().Parameters() {
			view.Parameters = append(view.Parameters, parameterView{
				Name:        p.Name,
				Type:        p.Rule.String(),
				Required:    p.Required,
				Default:     p.Default,
				Description: p.Description,
			})
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxRequestBytes)
	}
	var req domain.GenerationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	bundle, err := s.generate(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, statusFor(bundle.Outcome), bundle)
}

// generate runs the request on its own goroutine so a slow render cannot
// hold the connection past GenerateTimeout.
func (s *Server) generate(ctx context.Context, req domain.GenerationRequest) (domain.Bundle, error) {
	if s.opts.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.GenerateTimeout)
		defer cancel()
	}
	done := make(chan domain.Bundle, 1)
	go func() { done <- s.opts.Service.Generate(req) }()
	select {
	case b := <-done:
		return b, nil
	case <-ctx.Done():
		s.logger.Warn("generation abandoned", "backend", req.Backend, "error", ctx.Err())
		return domain.Bundle{}, ctx.Err()
	}
}

func statusFor(outcome string) int {
	switch outcome {
	case generator.OutcomeSuccess:
		return http.StatusOK
	case generator.OutcomeUnknownBackend:
		return http.StatusNotFound
	case generator.OutcomeInvalidConfig, generator.OutcomeRenderError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
