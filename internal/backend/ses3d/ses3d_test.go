package ses3d

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, logger *slog.Logger) *backend.Backend {
	t.Helper()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := backend.NewRegistry(logger)
	require.NoError(t, r.Register(Name, Definition(logger)))
	b, err := r.Get(Name)
	require.NoError(t, err)
	return b
}

func baseOverrides() map[string]any {
	return map[string]any{
		"number_of_time_steps": 4000,
		"time_increment_in_s":  0.13,
		"output_folder":        "../DATA/OUTPUT/1.8s/",
		"mesh_min_latitude":    34.1,
		"mesh_max_latitude":    42.9,
		"mesh_min_longitude":   23.1,
		"mesh_max_longitude":   42.9,
		"mesh_min_depth_in_km": 0.0,
		"mesh_max_depth_in_km": 471.0,
		"nx_global":            66,
		"ny_global":            108,
		"nz_global":            28,
		"px":                   3,
		"py":                   4,
		"pz":                   4,
		"source_time_function": []float64{1.0, 0.5, 0.0},
		"is_dissipative":       false,
	}
}

func testEvent() domain.Event {
	return domain.Event{
		Latitude:   39.26,
		Longitude:  41.04,
		DepthInKm:  5.0,
		OriginTime: time.Date(2012, 4, 12, 7, 15, 48, 500_000_000, time.UTC),
		Mrr:        1e16,
		Mtt:        1e16,
		Mpp:        1e16,
	}
}

func testStations() []domain.Station {
	return []domain.Station{
		{ID: "KO.ADVT", Latitude: 41.0, Longitude: 33.1234, ElevationInM: 10},
		{ID: "KO.AFSR", Latitude: 40.0, Longitude: 33.2345, ElevationInM: 220},
	}
}

func renderWith(t *testing.T, b *backend.Backend, overrides map[string]any, events []domain.Event, stations []domain.Station) (map[string]string, error) {
	t.Helper()
	cfg, err := resolver.Resolve(Name, b.Schema(), overrides)
	require.NoError(t, err)
	return b.Render(cfg, events, stations)
}

func TestRender_RealWorldExample(t *testing.T) {
	overrides := baseOverrides()
	overrides["stf_header"] = []string{"Some", "random", "comment"}
	overrides["adjoint_forward_wavefield_output_folder"] = "/tmp/some_folder/"
	overrides["displacement_snapshot_sampling"] = 15000

	files, err := renderWith(t, newBackend(t, nil), overrides, []domain.Event{testEvent()}, testStations())
	require.NoError(t, err)

	golden, err := filepath.Glob(filepath.Join("testdata", "real_world", "*"))
	require.NoError(t, err)
	require.Len(t, golden, len(files))

	for _, path := range golden {
		want, err := os.ReadFile(path)
		require.NoError(t, err)
		name := filepath.Base(path)
		got, ok := files[name]
		require.True(t, ok, "file %s not generated", name)
		if diff := cmp.Diff(string(want), got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestRender_AllFilesEndWithEmptyLine(t *testing.T) {
	files, err := renderWith(t, newBackend(t, nil), baseOverrides(), []domain.Event{testEvent()}, testStations()[:1])
	require.NoError(t, err)
	for name, content := range files {
		assert.True(t, strings.HasSuffix(content, "\n\n"), name)
	}
}

func TestRender_DefaultAdjointFolder(t *testing.T) {
	files, err := renderWith(t, newBackend(t, nil), baseOverrides(), []domain.Event{testEvent()}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(files["setup"], "../DATA/OUTPUT/1.8s/ADJOINT_FORWARD_FIELD\n\n"))
	assert.Equal(t, "0\n\n", files["recfile_1"])
	assert.Contains(t, files["stf"], "# STF written by the wfs-input-generator\n")
}

func TestRender_Errors(t *testing.T) {
	b := newBackend(t, nil)

	tooLong := baseOverrides()
	tooLong["stf_header"] = []string{"1", "2", "3", "4", "5", "6"}
	_, err := renderWith(t, b, tooLong, []domain.Event{testEvent()}, nil)
	require.ErrorIs(t, err, errSTFHeader)

	_, err = renderWith(t, b, baseOverrides(), []domain.Event{testEvent(), testEvent()}, nil)
	require.ErrorIs(t, err, errEventCount)
	var re *backend.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, Name, re.Backend)

	_, err = renderWith(t, b, baseOverrides(), nil, nil)
	require.ErrorIs(t, err, errEventCount)

	outside := testEvent()
	outside.Latitude = 10
	_, err = renderWith(t, b, baseOverrides(), []domain.Event{outside}, nil)
	require.ErrorIs(t, err, errEventOutside)
}

func TestRender_StationOutsideDomainIsSkipped(t *testing.T) {
	var logs bytes.Buffer
	b := newBackend(t, slog.New(slog.NewTextHandler(&logs, nil)))

	stations := append(testStations(), domain.Station{ID: "XX.FAR", Latitude: -10, Longitude: 0})
	files, err := renderWith(t, b, baseOverrides(), []domain.Event{testEvent()}, stations)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(files["recfile_1"], "2\n"))
	assert.NotContains(t, files["recfile_1"], "XX.FAR")
	assert.Contains(t, logs.String(), "XX.FAR")
}

func TestRender_BuriedStationDepth(t *testing.T) {
	stations := []domain.Station{{ID: "KO.DEEP", Latitude: 40, Longitude: 33, ElevationInM: 100, LocalDepthInM: 250}}
	files, err := renderWith(t, newBackend(t, nil), baseOverrides(), []domain.Event{testEvent()}, stations)
	require.NoError(t, err)
	assert.Equal(t, "1\nKO.DEEP_.___\n50.000000 33.000000 150.0\n\n", files["recfile_1"])
}

func TestRender_Rotation(t *testing.T) {
	overrides := baseOverrides()
	overrides["mesh_min_longitude"] = 0.0
	overrides["mesh_max_longitude"] = 90.0
	overrides["rotation_angle_in_degree"] = -10.0
	overrides["rotation_axis"] = []float64{0, 0, 1}

	files, err := renderWith(t, newBackend(t, nil), overrides, []domain.Event{testEvent()}, nil)
	require.NoError(t, err)
	// Rotating about the pole only shifts longitude.
	assert.Contains(t, files["event_1"], "51.040000                                   ! yys")
	assert.Contains(t, files["event_1"], "50.740000                                   ! xxs")
}

func TestSimulationTypeIsValidatedOnResolve(t *testing.T) {
	b := newBackend(t, nil)
	overrides := baseOverrides()
	overrides["simulation_type"] = "adjoint sideways"

	_, err := resolver.Resolve(Name, b.Schema(), overrides)
	var ce *resolver.ConfigurationError
	require.ErrorAs(t, err, &ce)
	require.Len(t, ce.Invalid(), 1)
	assert.Equal(t, "simulation_type", ce.Invalid()[0].Parameter)

	overrides["simulation_type"] = "adjoint reverse"
	files, err := renderWith(t, b, overrides, []domain.Event{testEvent()}, nil)
	require.NoError(t, err)
	assert.Contains(t, files["setup"], "2                                           ! adjoint_flag")
}

func TestEventTagMustBeAFileName(t *testing.T) {
	b := newBackend(t, nil)

	for _, tag := range []string{"/../../x", "a/b", `a\b`, "..", ""} {
		overrides := baseOverrides()
		overrides["event_tag"] = tag

		_, err := resolver.Resolve(Name, b.Schema(), overrides)
		var ce *resolver.ConfigurationError
		require.ErrorAs(t, err, &ce, tag)
		require.Len(t, ce.Invalid(), 1)
		assert.Equal(t, "event_tag", ce.Invalid()[0].Parameter)
	}

	overrides := baseOverrides()
	overrides["event_tag"] = 7
	files, err := renderWith(t, b, overrides, []domain.Event{testEvent()}, nil)
	require.NoError(t, err)
	assert.Contains(t, files, "event_7")
	assert.Contains(t, files, "recfile_7")
}
