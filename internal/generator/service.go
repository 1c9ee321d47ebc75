package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/observability"
	"github.com/couchcryptid/wfs-input-generator/internal/records"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/google/uuid"
)

// Outcome labels for the generation_requests_total metric.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidConfig  = "invalid_config"
	OutcomeRenderError    = "render_error"
	OutcomeUnknownBackend = "unknown_backend"
	OutcomeError          = "error"
)

// Service answers GenerationRequests. Each request gets a fresh Session, so
// a Service may be shared between goroutines once the registry is built.
type Service struct {
	registry *backend.Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func NewService(registry *backend.Registry, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{registry: registry, logger: logger, metrics: metrics}
}

// Registry returns the backends the service renders through.
func (s *Service) Registry() *backend.Registry { return s.registry }

// Generate renders one request. Failures are reported in the bundle rather
// than returned, so every request gets an answer. Records rejected during
// normalization are listed in Problems without failing the request.
func (s *Service) Generate(req domain.GenerationRequest) domain.Bundle {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := time.Now()
	bundle := domain.Bundle{RequestID: req.ID, Backend: req.Backend}

	files, sess, problems, err := s.generate(req)
	bundle.Problems = problems
	if sess != nil {
		bundle.Events = sess.EventCount()
		bundle.Stations = sess.StationCount()
	}
	bundle.GeneratedAt = domain.Now()

	outcome := classify(err)
	bundle.Outcome = outcome
	s.metrics.GenerationRequests.WithLabelValues(req.Backend, outcome).Inc()
	if err != nil {
		bundle.Error = err.Error()
		s.logger.Warn("generation failed",
			"request_id", req.ID,
			"backend", req.Backend,
			"outcome", outcome,
			"error", err,
		)
		return bundle
	}

	bundle.Files = files
	s.metrics.FilesRendered.WithLabelValues(req.Backend).Add(float64(len(files)))
	s.metrics.RenderDuration.WithLabelValues(req.Backend).Observe(time.Since(start).Seconds())
	s.logger.Info("generation succeeded",
		"request_id", req.ID,
		"backend", req.Backend,
		"files", len(files),
		"events", bundle.Events,
		"stations", bundle.Stations,
	)
	return bundle
}

func (s *Service) generate(req domain.GenerationRequest) (map[string]string, *Session, []string, error) {
	if _, err := s.registry.Get(req.Backend); err != nil {
		return nil, nil, nil, err
	}
	sess := NewSession(s.registry, s.logger)
	if req.Configuration != nil {
		if err := sess.AddConfiguration(req.Configuration); err != nil {
			return nil, sess, nil, err
		}
	}

	var problems []string
	if len(req.Events) > 0 {
		_, err := sess.AddEvents(recordInput(req.Events), "events")
		if problems, err = s.collect(problems, "events", err); err != nil {
			return nil, sess, problems, err
		}
	}
	if len(req.Stations) > 0 {
		_, err := sess.AddStations(recordInput(req.Stations), "stations")
		if problems, err = s.collect(problems, "stations", err); err != nil {
			return nil, sess, problems, err
		}
	}

	sess.SetEventFilter(req.EventFilter...)
	if err := sess.SetStationFilter(req.StationFilter...); err != nil {
		return nil, sess, problems, err
	}

	files, err := sess.Write(req.Backend, "")
	return files, sess, problems, err
}

// collect turns rejected records into problem strings. Any other error is
// returned unchanged.
func (s *Service) collect(problems []string, kind string, err error) ([]string, error) {
	if err == nil {
		return problems, nil
	}
	var ae *records.AddError
	if !errors.As(err, &ae) {
		return problems, err
	}
	s.metrics.RecordsRejected.WithLabelValues(kind).Add(float64(len(ae.Problems)))
	for _, p := range ae.Problems {
		problems = append(problems, p.Error())
	}
	return problems, nil
}

// recordInput unwraps a JSON string so that embedded XML documents reach
// the session as text.
func recordInput(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return text
		}
	}
	return []byte(trimmed)
}

func classify(err error) string {
	var (
		ube *backend.UnknownBackendError
		re  *backend.RenderError
		ce  *resolver.ConfigurationError
		upe *resolver.UnknownParameterError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &ube):
		return OutcomeUnknownBackend
	case errors.As(err, &re):
		return OutcomeRenderError
	case errors.As(err, &ce), errors.As(err, &upe):
		return OutcomeInvalidConfig
	default:
		return OutcomeError
	}
}
