package generator

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/catalog"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/specfem"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/records"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSession(catalog.New(logger), logger)
}

func event(publicID string, lat float64) map[string]any {
	ev := map[string]any{
		"latitude":    lat,
		"longitude":   41.04,
		"depth_in_km": 5.0,
		"origin_time": "2012-04-12T07:15:48.5Z",
		"m_rr":        1e16,
		"m_tt":        1e16,
		"m_pp":        1e16,
		"m_rt":        0.0,
		"m_rp":        0.0,
		"m_tp":        0.0,
	}
	if publicID != "" {
		ev["public_id"] = publicID
	}
	return ev
}

func station(id string) map[string]any {
	return map[string]any{"id": id, "latitude": 40.0, "longitude": 33.0, "elevation_in_m": 10.0}
}

const specfemConfig = `
NPROC: 5
NSTEP: 10
DT: 15
SIMULATION_TYPE: 1
`

func TestWrite_ReturnsFilesWithoutDirectory(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.AddConfiguration(specfemConfig))
	_, err := s.AddEvents(event("", 39.26), "")
	require.NoError(t, err)
	_, err = s.AddStations([]map[string]any{station("KO.ADVT")}, "inline")
	require.NoError(t, err)

	files, err := s.Write(specfem.Name, "")
	require.NoError(t, err)
	assert.Contains(t, files["Par_file"], "NPROC                           = 5\n")
	assert.Equal(t, "ADVT KO 40.00000 33.00000 10.0 0.0", files["STATIONS"])
}

func TestWrite_ToDirectory(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.AddConfiguration(specfemConfig))
	_, err := s.AddEvents(event("", 39.26), "")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "STATIONS"), []byte("stale"), 0o644))

	files, err := s.Write(specfem.Name, dir)
	require.NoError(t, err)
	assert.Nil(t, files)

	for _, name := range []string{"Par_file", "CMTSOLUTION", "STATIONS"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	stations, err := os.ReadFile(filepath.Join(dir, "STATIONS"))
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestWrite_MissingDirectory(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.AddConfiguration(specfemConfig))
	_, err := s.AddEvents(event("", 39.26), "")
	require.NoError(t, err)

	_, err = s.Write(specfem.Name, filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = s.Write(specfem.Name, file)
	require.ErrorIs(t, err, errNotDirectory)
}

func TestWriteFiles_RejectsEscapingNames(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	for _, name := range []string{"event_/../../x", "../x", "..", `a\b`, ""} {
		err := writeFiles(outDir, map[string]string{"setup": "ok", name: "bad"})
		require.ErrorIs(t, err, errFileName, name)
	}
	assert.NoFileExists(t, filepath.Join(outDir, "setup"))
	assert.NoFileExists(t, filepath.Join(dir, "x"))
}

func TestWrite_ConfigurationErrorCanBeRetried(t *testing.T) {
	s := newSession(t)
	_, err := s.AddEvents(event("", 39.26), "")
	require.NoError(t, err)
	s.Set("DT", "not a number")

	_, err = s.Write(specfem.Name, "")
	var ce *resolver.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.ElementsMatch(t, []string{"NPROC", "NSTEP", "SIMULATION_TYPE"}, ce.Missing())
	require.Len(t, ce.Invalid(), 1)
	assert.Equal(t, "DT", ce.Invalid()[0].Parameter)

	require.NoError(t, s.AddConfiguration(`{"NPROC": 5, "NSTEP": 10, "DT": 0.5, "SIMULATION_TYPE": 1}`))
	files, err := s.Write(specfem.Name, "")
	require.NoError(t, err)
	assert.Contains(t, files["Par_file"], "DT                              = 0.5\n")
	assert.Equal(t, 1, s.EventCount())
}

func TestWrite_UnknownParameterAndBackend(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.AddConfiguration(specfemConfig))
	s.Set("NPORC", 4)

	_, err := s.Write(specfem.Name, "")
	var upe *resolver.UnknownParameterError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, []string{"NPORC"}, upe.Names)

	_, err = s.Write("no_such_solver", "")
	var ube *backend.UnknownBackendError
	require.ErrorAs(t, err, &ube)
}

func TestWrite_StationFilterLeavesCollectionIntact(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.AddConfiguration(specfemConfig))
	_, err := s.AddEvents(event("", 39.26), "")
	require.NoError(t, err)
	_, err = s.AddStations([]any{station("BW.FURT"), station("TA.ABC"), station("TA.XYZ")}, "")
	require.NoError(t, err)

	require.NoError(t, s.SetStationFilterJSON(`["TA.A*"]`))
	files, err := s.Write(specfem.Name, "")
	require.NoError(t, err)
	assert.Equal(t, "ABC TA 40.00000 33.00000 10.0 0.0", files["STATIONS"])
	assert.Equal(t, 3, s.StationCount())

	require.NoError(t, s.SetStationFilter())
	files, err = s.Write(specfem.Name, "")
	require.NoError(t, err)
	assert.Len(t, strings.Split(files["STATIONS"], "\n"), 3)
}

func TestWrite_EventFilterSelectsSingleEvent(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.AddConfiguration(specfemConfig))
	_, err := s.AddEvents([]map[string]any{
		event("smi:local/a", 39.26),
		event("smi:local/b", 38.0),
		event("", 37.0),
	}, "")
	require.NoError(t, err)

	_, err = s.Write(specfem.Name, "")
	require.Error(t, err, "three events cannot go into one CMTSOLUTION")

	s.SetEventFilter("smi:local/b")
	files, err := s.Write(specfem.Name, "")
	require.NoError(t, err)
	assert.Contains(t, files["CMTSOLUTION"], "latitude:       38.00000\n")
}

func TestAddEvents_PartialSuccessAndIdempotence(t *testing.T) {
	s := newSession(t)
	bad := event("", 39.26)
	delete(bad, "m_rr")

	res, err := s.AddEvents([]map[string]any{event("", 39.26), bad}, "batch")
	var ae *records.AddError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, records.AddResult{Added: 1, Rejected: 1}, res)

	var ire *domain.InvalidRecordError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, "batch", ire.Source)
	assert.Equal(t, 1, ire.Index)

	res, err = s.AddEvents(`[` + mustJSON(t, event("", 39.26)) + `]`, "")
	require.NoError(t, err)
	assert.Equal(t, records.AddResult{Duplicates: 1}, res)
	assert.Equal(t, 1, s.EventCount())
}

func quakeMLEvent(id, lat string) string {
	return `<event publicID="` + id + `">
    <origin publicID="` + id + `/o">
      <time><value>2013-01-01T00:00:00Z</value></time>
      <latitude><value>` + lat + `</value></latitude>
      <longitude><value>20</value></longitude>
      <depth><value>5000</value></depth>
    </origin>
    <focalMechanism publicID="` + id + `/fm">
      <momentTensor><tensor>
        <Mrr><value>1e16</value></Mrr><Mtt><value>1e16</value></Mtt><Mpp><value>1e16</value></Mpp>
        <Mrt><value>0</value></Mrt><Mrp><value>0</value></Mrp><Mtp><value>0</value></Mtp>
      </tensor></momentTensor>
    </focalMechanism>
  </event>`
}

func TestAddEvents_QuakeMLKeepsValidEvents(t *testing.T) {
	doc := `<quakeml><eventParameters>
  <event publicID="smi:local/no-origin"/>` +
		quakeMLEvent("smi:local/good", "10") +
		quakeMLEvent("smi:local/too-far-north", "95") + `
</eventParameters></quakeml>`

	path := filepath.Join(t.TempDir(), "events.xml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	for name, add := range map[string]func(s *Session) (records.AddResult, error){
		"document": func(s *Session) (records.AddResult, error) { return s.AddEvents(doc, "catalog") },
		"file":     func(s *Session) (records.AddResult, error) { return s.AddEventFile(path) },
	} {
		t.Run(name, func(t *testing.T) {
			s := newSession(t)
			res, err := add(s)
			assert.Equal(t, records.AddResult{Added: 1, Rejected: 2}, res)
			assert.Equal(t, 1, s.EventCount())

			var ae *records.AddError
			require.ErrorAs(t, err, &ae)
			require.Len(t, ae.Problems, 2)
			var indices []int
			for _, p := range ae.Problems {
				var ire *domain.InvalidRecordError
				require.ErrorAs(t, p, &ire)
				indices = append(indices, ire.Index)
			}
			assert.Equal(t, []int{0, 2}, indices)
			assert.Contains(t, err.Error(), "smi:local/no-origin")
		})
	}
}

func TestAddEventFile_Unreadable(t *testing.T) {
	s := newSession(t)
	path := filepath.Join(t.TempDir(), "events.xml")
	require.NoError(t, os.WriteFile(path, []byte("<quakeml><broken"), 0o644))

	_, err := s.AddEventFile(path)
	var ire *domain.InvalidRecordError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, -1, ire.Index)
	assert.Equal(t, 0, s.EventCount())
}

func TestAddStationFile_JSON(t *testing.T) {
	s := newSession(t)
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(`[`+mustJSON(t, station("KO.ADVT"))+`]`), 0o644))

	res, err := s.AddStationFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
}

func TestAddStationFile_SAC(t *testing.T) {
	header := make([]byte, 632)
	for i := 0; i < 70; i++ {
		binary.LittleEndian.PutUint32(header[i*4:], math.Float32bits(-12345))
	}
	binary.LittleEndian.PutUint32(header[31*4:], math.Float32bits(40))
	binary.LittleEndian.PutUint32(header[32*4:], math.Float32bits(33))
	binary.LittleEndian.PutUint32(header[33*4:], math.Float32bits(10))
	binary.LittleEndian.PutUint32(header[76*4:], 6)
	copy(header[440:], "ADVT    ")
	copy(header[608:], "KO      ")

	path := filepath.Join(t.TempDir(), "KO.ADVT.BHZ.sac")
	require.NoError(t, os.WriteFile(path, header, 0o644))

	s := newSession(t)
	res, err := s.AddStationFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	require.NoError(t, s.AddConfiguration(specfemConfig))
	_, err = s.AddEvents(event("", 39.26), "")
	require.NoError(t, err)
	files, err := s.Write(specfem.Name, "")
	require.NoError(t, err)
	assert.Equal(t, "ADVT KO 40.00000 33.00000 10.0 0.0", files["STATIONS"])
}

func TestAddConfiguration(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.AddConfiguration(map[string]any{"NPROC": 2}))
	require.NoError(t, s.AddConfiguration("NSTEP: 100\n"))
	require.NoError(t, s.AddConfiguration([]byte(`{"DT": 0.1}`)))
	require.Error(t, s.AddConfiguration(`{"DT": `))
	require.Error(t, s.AddConfiguration(42))

	cfg := s.Configuration()
	assert.Equal(t, 2, cfg["NPROC"])
	assert.Equal(t, 100, cfg["NSTEP"])
	assert.InDelta(t, 0.1, cfg["DT"], 1e-12)

	path := filepath.Join(t.TempDir(), "par.yaml")
	require.NoError(t, os.WriteFile(path, []byte("MODEL: tomo\n"), 0o644))
	require.NoError(t, s.AddConfigurationFile(path))
	assert.Equal(t, "tomo", s.Configuration()["MODEL"])
}

func TestBackendsAndConfigParams(t *testing.T) {
	s := newSession(t)
	assert.Contains(t, s.Backends(), specfem.Name)

	params, err := s.ConfigParams(specfem.Name)
	require.NoError(t, err)
	assert.True(t, params.Has("NPROC"))

	_, err = s.ConfigParams("nope")
	require.Error(t, err)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
