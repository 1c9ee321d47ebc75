package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/wfs-input-generator/internal/backend/catalog"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/specfem"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/generator"
	"github.com/couchcryptid/wfs-input-generator/internal/observability"
	"github.com/couchcryptid/wfs-input-generator/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	mu      sync.Mutex
	batches [][]domain.RawMessage
	err     error
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawMessage, error) {
	m.mu.Lock()
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}
	if len(m.batches) > 0 {
		b := m.batches[0]
		m.batches = m.batches[1:]
		m.mu.Unlock()
		return b, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	if m.err != nil {
		return domain.OutputMessage{}, m.err
	}
	return domain.OutputMessage{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputMessage
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, msgs []domain.OutputMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, msgs...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	committed := 0
	raw := domain.RawMessage{Key: []byte("req-1"), Value: []byte(`{}`), Commit: func(context.Context) error {
		committed++
		return nil
	}}

	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)

	require.Error(t, p.CheckReadiness(context.Background()))
	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, []byte("req-1"), ldr.loaded[0].Key)
	assert.Equal(t, 1, committed)
	require.NoError(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PipelineRunning), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_UndecodableMessageIsCommittedAndSkipped(t *testing.T) {
	committed := false
	raw := domain.RawMessage{Value: []byte("not-json{{{"), Commit: func(context.Context) error {
		committed = true
		return nil
	}}
	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad request")}, ldr, discardLogger(), metrics, 10)

	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.True(t, committed)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DecodeErrors), 0)
	require.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	committed := false
	raw := domain.RawMessage{Value: []byte(`{}`), Commit: func(context.Context) error {
		committed = true
		return nil
	}}
	ext := &mockExtractor{batches: [][]domain.RawMessage{{raw}}}
	ldr := &mockLoader{err: errors.New("broker unavailable")}
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	runFor(t, p, 300*time.Millisecond)

	assert.False(t, committed)
	require.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ExtractErrorBacksOff(t *testing.T) {
	ext := &mockExtractor{err: errors.New("connection refused")}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)

	start := time.Now()
	runFor(t, p, 100*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRequestTransformer_Transform(t *testing.T) {
	frozen := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	logger := discardLogger()
	svc := generator.NewService(catalog.New(logger), logger, observability.NewMetricsForTesting())
	tfm := pipeline.NewTransformer(svc)

	request := map[string]any{
		"backend":       specfem.Name,
		"configuration": map[string]any{"NPROC": 1, "NSTEP": 10, "DT": 0.1, "SIMULATION_TYPE": 1},
		"events": map[string]any{
			"latitude":    10.0,
			"longitude":   20.0,
			"depth_in_km": 3.0,
			"origin_time": "2020-01-01T00:00:00Z",
			"m_rr":        1e15,
			"m_tt":        -1e15,
			"m_pp":        0.0,
			"m_rt":        0.0,
			"m_rp":        0.0,
			"m_tp":        0.0,
		},
		"stations": []any{map[string]any{"id": "GR.FUR", "latitude": 48.0, "longitude": 11.0, "elevation_in_m": 565.0}},
	}
	value, err := json.Marshal(request)
	require.NoError(t, err)

	out, err := tfm.Transform(context.Background(), domain.RawMessage{Key: []byte("from-key"), Value: value})
	require.NoError(t, err)
	assert.Equal(t, []byte("from-key"), out.Key)

	wantHeaders := map[string]string{
		pipeline.HeaderBackend:     specfem.Name,
		pipeline.HeaderStatus:      "ok",
		pipeline.HeaderGeneratedAt: "2026-03-04T05:06:07Z",
	}
	if diff := cmp.Diff(wantHeaders, out.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	var bundle domain.Bundle
	require.NoError(t, json.Unmarshal(out.Value, &bundle))
	assert.Equal(t, "from-key", bundle.RequestID)
	assert.Equal(t, "FUR GR 48.00000 11.00000 565.0 0.0", bundle.Files["STATIONS"])
	assert.Equal(t, frozen, bundle.GeneratedAt)
}

func TestRequestTransformer_FailedGenerationIsStillAnswered(t *testing.T) {
	logger := discardLogger()
	svc := generator.NewService(catalog.New(logger), logger, observability.NewMetricsForTesting())
	tfm := pipeline.NewTransformer(svc)

	out, err := tfm.Transform(context.Background(), domain.RawMessage{
		Key:   []byte("req-9"),
		Value: []byte(`{"backend": "SPECFEM3D_CARTESIAN"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "failed", out.Headers[pipeline.HeaderStatus])

	var bundle domain.Bundle
	require.NoError(t, json.Unmarshal(out.Value, &bundle))
	assert.Contains(t, bundle.Error, "NPROC")
}

func TestDecodeRequest_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":        "not-json{{{",
		"missing backend": `{"configuration": {}}`,
		"unknown field":   `{"backend": "x", "solver": "y"}`,
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := pipeline.DecodeRequest(domain.RawMessage{Value: []byte(value)})
			require.Error(t, err)
		})
	}
}
