// Package ses3d renders input files for the SES3D 4.1 spectral-element
// solver in spherical coordinates.
package ses3d

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/couchcryptid/wfs-input-generator/internal/rotation"
	"github.com/couchcryptid/wfs-input-generator/internal/schema"
)

// Name is the registry name of the backend.
const Name = "ses3d_4_1"

const earthRadiusM = 6371 * 1000.0

const maxSTFHeaderLines = 4

var simulationTypes = map[string]int{
	"normal simulation": 0,
	"adjoint forward":   1,
	"adjoint reverse":   2,
}

var simulationType = coerce.Custom("simulation type", func(v any) (any, error) {
	s, err := coerce.String.Apply("simulation_type", v)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(s.(string))
	if _, ok := simulationTypes[name]; !ok {
		return nil, errors.New(`must be one of "normal simulation", "adjoint forward", "adjoint reverse"`)
	}
	return name, nil
})

// eventTag becomes part of the event_ and recfile_ file names.
var eventTag = coerce.Custom("event tag", func(v any) (any, error) {
	s, err := coerce.String.Apply("event_tag", v)
	if err != nil {
		return nil, err
	}
	tag := s.(string)
	if tag == "" || strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return nil, errors.New("must be a non-empty name without path separators or \"..\"")
	}
	return tag, nil
})

var (
	errEventCount   = errors.New("exactly one event is required for SES3D 4.1")
	errEventOutside = errors.New("event is not in the domain")
	errSTFHeader    = fmt.Errorf("the STF header can only be up to %d lines", maxSTFHeaderLines)
	errRotationAxis = errors.New("rotation_axis must have three components and not be zero")
)

// Definition returns the backend definition. Stations outside the mesh are
// skipped and reported through logger.
func Definition(logger *slog.Logger) backend.Definition {
	if logger == nil {
		logger = slog.Default()
	}
	return backend.Definition{
		Description: "SES3D 4.1, spherical section spectral-element solver",
		Required: map[string]schema.Required{
			"output_folder":        {Rule: coerce.String, Description: "The output directory"},
			"number_of_time_steps": {Rule: coerce.Int, Description: "The number of time steps"},
			"time_increment_in_s":  {Rule: coerce.Float, Description: "The time increment in seconds"},
			"mesh_min_latitude":    {Rule: coerce.Float, Description: "The minimum latitude of the mesh"},
			"mesh_max_latitude":    {Rule: coerce.Float, Description: "The maximum latitude of the mesh"},
			"mesh_min_longitude":   {Rule: coerce.Float, Description: "The minimum longitude of the mesh"},
			"mesh_max_longitude":   {Rule: coerce.Float, Description: "The maximum longitude of the mesh"},
			"mesh_min_depth_in_km": {Rule: coerce.Float, Description: "The minimum depth of the mesh in km"},
			"mesh_max_depth_in_km": {Rule: coerce.Float, Description: "The maximum depth of the mesh in km"},
			"nx_global":            {Rule: coerce.Int, Description: "Number of elements in theta direction"},
			"ny_global":            {Rule: coerce.Int, Description: "Number of elements in phi direction"},
			"nz_global":            {Rule: coerce.Int, Description: "Number of elements in r direction"},
			"px":                   {Rule: coerce.Int, Description: "Number of processors in theta direction"},
			"py":                   {Rule: coerce.Int, Description: "Number of processors in phi direction"},
			"pz":                   {Rule: coerce.Int, Description: "Number of processors in r direction"},
			"source_time_function": {Rule: coerce.FloatSlice, Description: "The source time function, one sample per time step"},
		},
		Optional: map[string]schema.Optional{
			"event_tag": {Default: "1", Rule: eventTag,
				Description: "The name of the event. Should be numeric for now"},
			"is_dissipative": {Default: true, Rule: coerce.Bool,
				Description: "Dissipative simulation or not"},
			"stf_header": {Default: []string{
				"STF written by the wfs-input-generator",
				"    https://github.com/couchcryptid/wfs-input-generator",
				"The original source of the STF is not known to the",
				"input generator module.",
			}, Rule: coerce.StringSlice,
				Description: "Up to four free-form comment lines written above the STF samples"},
			"output_displacement": {Default: false, Rule: coerce.Bool,
				Description: "Output the displacement field"},
			"displacement_snapshot_sampling": {Default: 10000, Rule: coerce.Int,
				Description: "Sampling rate of output displacement field"},
			"lagrange_polynomial_degree": {Default: 4, Rule: coerce.Int,
				Description: "Degree of the Lagrange polynomials"},
			"simulation_type": {Default: "normal simulation", Rule: simulationType,
				Description: "One of 'normal simulation', 'adjoint forward', 'adjoint reverse'"},
			"adjoint_forward_sampling_rate": {Default: 15, Rule: coerce.Int,
				Description: "Sampling rate of the adjoint forward field"},
			"adjoint_forward_wavefield_output_folder": {Default: "", Rule: coerce.String,
				Description: "Output folder of the adjoint forward field. Defaults to a subfolder of output_folder"},
			"rotation_angle_in_degree": {Default: 0.0, Rule: coerce.Float,
				Description: "Rotation of the mesh. All data is rotated the opposite way"},
			"rotation_axis": {Default: []float64{0, 0, 1}, Rule: coerce.FloatSlice,
				Description: "The rotation axis as [x, y, z]"},
			"Q_model_relaxation_times": {Default: []float64{1.7308, 14.3961, 22.9973}, Rule: coerce.FloatSlice,
				Description: "Relaxation times of the Q model mechanisms"},
			"Q_model_weights_of_relaxation_mechanisms": {Default: []float64{2.5100, 2.4354, 0.0879}, Rule: coerce.FloatSlice,
				Description: "Weights of the Q model relaxation mechanisms"},
		},
		Render: func(cfg *resolver.Config, events []domain.Event, stations []domain.Station) (map[string]string, error) {
			return render(logger, cfg, events, stations)
		},
	}
}

type mesh struct {
	minLat, maxLat, minLon, maxLon float64
	minDepthKm, maxDepthKm         float64
}

func (m mesh) contains(lat, lon float64) bool {
	return m.minLat <= lat && lat <= m.maxLat && m.minLon <= lon && lon <= m.maxLon
}

type rotator struct {
	axis  rotation.Vector
	angle float64
}

func (r rotator) active() bool { return r.angle != 0 }

func (r rotator) latLon(lat, lon float64) (float64, float64) {
	if !r.active() {
		return lat, lon
	}
	return rotation.RotateLatLon(lat, lon, r.axis, r.angle)
}

func render(logger *slog.Logger, cfg *resolver.Config, events []domain.Event, stations []domain.Station) (map[string]string, error) {
	header := cfg.Texts("stf_header")
	if len(header) > maxSTFHeaderLines {
		return nil, errSTFHeader
	}
	if len(events) != 1 {
		return nil, fmt.Errorf("%w, got %d", errEventCount, len(events))
	}
	event := events[0]

	rot := rotator{angle: -cfg.Float("rotation_angle_in_degree")}
	if rot.active() {
		axis := cfg.Floats("rotation_axis")
		if len(axis) != 3 || (axis[0] == 0 && axis[1] == 0 && axis[2] == 0) {
			return nil, errRotationAxis
		}
		rot.axis = rotation.Vector{axis[0], axis[1], axis[2]}
	}

	m := mesh{
		minLat:     cfg.Float("mesh_min_latitude"),
		maxLat:     cfg.Float("mesh_max_latitude"),
		minLon:     cfg.Float("mesh_min_longitude"),
		maxLon:     cfg.Float("mesh_max_longitude"),
		minDepthKm: cfg.Float("mesh_min_depth_in_km"),
		maxDepthKm: cfg.Float("mesh_max_depth_in_km"),
	}

	lat, lon := rot.latLon(event.Latitude, event.Longitude)
	mt := rotation.MomentTensor{
		Mrr: event.Mrr, Mtt: event.Mtt, Mpp: event.Mpp,
		Mrt: event.Mrt, Mrp: event.Mrp, Mtp: event.Mtp,
	}
	if rot.active() {
		mt = rotation.RotateMomentTensor(mt, event.Latitude, event.Longitude, rot.axis, rot.angle)
	}
	if !m.contains(lat, lon) {
		return nil, errEventOutside
	}

	tag := cfg.Text("event_tag")
	files := map[string]string{
		"setup":          setupFile(cfg, m),
		"event_" + tag:   eventFile(cfg, event, lat, lon, mt),
		"event_list":     fmt.Sprintf("%-44d! n_events = number of events\n%s", 1, tag),
		"recfile_" + tag: recFile(logger, rot, m, stations),
		"relax":          relaxFile(cfg),
		"stf":            stfFile(header, cfg.Floats("source_time_function")),
	}
	for name := range files {
		files[name] += "\n\n"
	}
	return files, nil
}

// Section banners are padded with '=' to the widths SES3D ships with.
const (
	setupWidth  = 139
	sourceWidth = 104
	outputWidth = 103
)

func section(title string, width int) string {
	return title + " " + strings.Repeat("=", width-len(title)-1) + "\n"
}

func setupFile(cfg *resolver.Config, m mesh) string {
	adjointFolder := cfg.Text("adjoint_forward_wavefield_output_folder")
	if adjointFolder == "" {
		adjointFolder = joinFolder(cfg.Text("output_folder"), "ADJOINT_FORWARD_FIELD")
	}
	isDiss := 0
	if cfg.Bool("is_dissipative") {
		isDiss = 1
	}

	var b strings.Builder
	b.WriteString(section("MODEL", setupWidth))
	// Colatitude swaps min and max, as do radius and depth.
	fmt.Fprintf(&b, "%-44.6f! theta_min (colatitude) in degrees\n", rotation.LatToColat(m.maxLat))
	fmt.Fprintf(&b, "%-44.6f! theta_max (colatitude) in degrees\n", rotation.LatToColat(m.minLat))
	fmt.Fprintf(&b, "%-44.6f! phi_min (longitude) in degrees\n", m.minLon)
	fmt.Fprintf(&b, "%-44.6f! phi_max (longitude) in degrees\n", m.maxLon)
	fmt.Fprintf(&b, "%-44.6f! z_min (radius) in m\n", earthRadiusM-m.maxDepthKm*1000)
	fmt.Fprintf(&b, "%-44.6f! z_max (radius) in m\n", earthRadiusM-m.minDepthKm*1000)
	fmt.Fprintf(&b, "%-44d! is_diss\n", isDiss)
	fmt.Fprintf(&b, "%-44d! model_type\n", 1)
	b.WriteString(section("COMPUTATIONAL SETUP (PARALLELISATION)", setupWidth))
	fmt.Fprintf(&b, "%-44d! nx_global, (nx_global+px = global # elements in theta direction)\n", cfg.Int("nx_global"))
	fmt.Fprintf(&b, "%-44d! ny_global, (ny_global+py = global # elements in phi direction)\n", cfg.Int("ny_global"))
	fmt.Fprintf(&b, "%-44d! nz_global, (nz_global+pz = global # of elements in r direction)\n", cfg.Int("nz_global"))
	fmt.Fprintf(&b, "%-44d! lpd, LAGRANGE polynomial degree\n", cfg.Int("lagrange_polynomial_degree"))
	fmt.Fprintf(&b, "%-44d! px, processors in theta direction\n", cfg.Int("px"))
	fmt.Fprintf(&b, "%-44d! py, processors in phi direction\n", cfg.Int("py"))
	fmt.Fprintf(&b, "%-44d! pz, processors in r direction\n", cfg.Int("pz"))
	b.WriteString(section("ADJOINT PARAMETERS", setupWidth))
	fmt.Fprintf(&b, "%-44d! adjoint_flag (0=normal simulation, 1=adjoint forward, 2=adjoint reverse)\n",
		simulationTypes[cfg.Text("simulation_type")])
	fmt.Fprintf(&b, "%-44d! samp_ad, sampling rate of forward field\n", cfg.Int("adjoint_forward_sampling_rate"))
	b.WriteString(adjointFolder)
	return b.String()
}

func eventFile(cfg *resolver.Config, ev domain.Event, lat, lon float64, mt rotation.MomentTensor) string {
	displacement := 0
	if cfg.Bool("output_displacement") {
		displacement = 1
	}

	var b strings.Builder
	b.WriteString(section("SIMULATION PARAMETERS", sourceWidth))
	fmt.Fprintf(&b, "%-44d! nt, number of time steps\n", cfg.Int("number_of_time_steps"))
	fmt.Fprintf(&b, "%-44.6f! dt in sec, time increment\n", cfg.Float("time_increment_in_s"))
	b.WriteString(section("SOURCE", sourceWidth))
	fmt.Fprintf(&b, "%-44.6f! xxs, theta-coord. center of source in degrees\n", rotation.LatToColat(lat))
	fmt.Fprintf(&b, "%-44.6f! yys, phi-coord. center of source in degrees\n", lon)
	fmt.Fprintf(&b, "%-44.6f! zzs, source depth in (m)\n", ev.DepthInKm*1000)
	fmt.Fprintf(&b, "%-44d! srctype, 1:f_x, 2:f_y, 3:f_z, 10:M_ij\n", 10)
	fmt.Fprintf(&b, "%-44.6e! M_theta_theta\n", mt.Mtt)
	fmt.Fprintf(&b, "%-44.6e! M_phi_phi\n", mt.Mpp)
	fmt.Fprintf(&b, "%-44.6e! M_r_r\n", mt.Mrr)
	fmt.Fprintf(&b, "%-44.6e! M_theta_phi\n", mt.Mtp)
	fmt.Fprintf(&b, "%-44.6e! M_theta_r\n", mt.Mrt)
	fmt.Fprintf(&b, "%-44.6e! M_phi_r\n", mt.Mrp)
	b.WriteString(section("OUTPUT DIRECTORY", outputWidth))
	b.WriteString(cfg.Text("output_folder") + "\n")
	b.WriteString(section("OUTPUT FLAGS", outputWidth))
	fmt.Fprintf(&b, "%-44d! ssamp, snapshot sampling\n", cfg.Int("displacement_snapshot_sampling"))
	fmt.Fprintf(&b, "%-44d! output_displacement, output displacement field (1=yes,0=no)", displacement)
	return b.String()
}

func recFile(logger *slog.Logger, rot rotator, m mesh, stations []domain.Station) string {
	var lines []string
	for _, st := range stations {
		lat, lon := rot.latLon(st.Latitude, st.Longitude)
		if !m.contains(lat, lon) {
			logger.Warn("station is not in the domain, skipping", "backend", Name, "station", st.ID)
			continue
		}
		depth := -(st.ElevationInM - st.LocalDepthInM)
		if depth <= 0 {
			depth = 0
		}
		lines = append(lines,
			fmt.Sprintf("%s.%s.___", padRight(st.Network(), 2, '_'), padRight(st.Code(), 5, '_')),
			fmt.Sprintf("%.6f %.6f %.1f", rotation.LatToColat(lat), lon, depth),
		)
	}
	return strings.Join(append([]string{fmt.Sprint(len(lines) / 2)}, lines...), "\n")
}

func relaxFile(cfg *resolver.Config) string {
	return "RELAXATION TIMES [s] =====================\n" +
		joinReals("%.6f", cfg.Floats("Q_model_relaxation_times")) + "\n" +
		"WEIGHTS OF RELAXATION MECHANISMS =========\n" +
		joinReals("%.6f", cfg.Floats("Q_model_weights_of_relaxation_mechanisms"))
}

func stfFile(header []string, samples []float64) string {
	lines := make([]string, 0, maxSTFHeaderLines+len(samples))
	for _, h := range header {
		lines = append(lines, "# "+strings.ReplaceAll(strings.TrimSpace(h), "\n", " "))
	}
	for len(lines) < maxSTFHeaderLines {
		lines = append(lines, "#")
	}
	if len(samples) > 0 {
		lines = append(lines, joinReals("%e", samples))
	}
	return strings.Join(lines, "\n")
}

func joinReals(format string, values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf(format, v)
	}
	return strings.Join(parts, "\n")
}

func padRight(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(string(pad), width-len(s))
}

// joinFolder appends name to a solver-side folder without cleaning it.
func joinFolder(folder, name string) string {
	if folder == "" || strings.HasSuffix(folder, "/") {
		return folder + name
	}
	return folder + "/" + name
}
