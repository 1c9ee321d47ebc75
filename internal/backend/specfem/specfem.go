// Package specfem renders Par_file, CMTSOLUTION and STATIONS for
// SPECFEM3D_CARTESIAN.
package specfem

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/couchcryptid/wfs-input-generator/internal/schema"
	"github.com/spf13/cast"
)

// Name is the registry name of the backend.
const Name = "SPECFEM3D_CARTESIAN"

var errEventCount = errors.New("the SPECFEM backend can only deal with a single event")

// Logical coerces booleans and Fortran logical literals to ".true." or
// ".false.".
var Logical = coerce.Custom("Fortran logical", func(v any) (any, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case ".true.", "t":
			return ".true.", nil
		case ".false.", "f":
			return ".false.", nil
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, err
	}
	if b {
		return ".true.", nil
	}
	return ".false.", nil
})

func flag(description string) schema.Optional {
	return schema.Optional{Default: ".false.", Rule: Logical, Description: description}
}

// Definition returns the backend definition.
func Definition() backend.Definition {
	return backend.Definition{
		Description: "SPECFEM3D_CARTESIAN, Cartesian spectral-element solver",
		Required: map[string]schema.Required{
			"NPROC": {Rule: coerce.Int, Description: "number of MPI processors"},
			"NSTEP": {Rule: coerce.Int, Description: "The number of time steps"},
			"DT":    {Rule: coerce.Float, Description: "The time increment in seconds"},
			"SIMULATION_TYPE": {Rule: coerce.Int,
				Description: "forward or adjoint simulation, 1 = forward, 2 = adjoint, 3 = both simultaneously"},
		},
		Optional: map[string]schema.Optional{
			"NOISE_TOMOGRAPHY": {Default: 0, Rule: coerce.Int,
				Description: "noise tomography simulation, 0 = earthquake simulation, 1/2/3 = three steps in noise simulation"},
			"SAVE_FORWARD": flag("save forward wavefield"),
			"UTM_PROJECTION_ZONE": {Default: 11, Rule: coerce.Int,
				Description: "set up the utm zone, if SUPPRESS_UTM_PROJECTION is false"},
			"SUPPRESS_UTM_PROJECTION": {Default: ".true.", Rule: Logical, Description: "suppress the utm projection"},
			"NGNOD": {Default: 8, Rule: coerce.Int,
				Description: "number of nodes for 2D and 3D shape functions for hexahedra, 8 or 27"},
			"MODEL": {Default: "default", Rule: coerce.String,
				Description: "default, 1d_prem, 1d_socal, 1d_cascadia, aniso, external, gll, salton_trough or tomo"},
			"APPROXIMATE_OCEAN_LOAD": flag("see SPECFEM3D_CARTESIAN manual"),
			"TOPOGRAPHY":             flag("see SPECFEM3D_CARTESIAN manual"),
			"ATTENUATION":            flag("see SPECFEM3D_CARTESIAN manual"),
			"FULL_ATTENUATION_SOLID": flag("see SPECFEM3D_CARTESIAN manual"),
			"ANISOTROPY":             flag("see SPECFEM3D_CARTESIAN manual"),
			"GRAVITY":                flag("see SPECFEM3D_CARTESIAN manual"),
			"TOMOGRAPHY_PATH": {Default: "../DATA/tomo_files/", Rule: coerce.String,
				Description: "path for external tomographic models files"},
			"USE_OLSEN_ATTENUATION": flag("use the Olsen attenuation, Q_mu = constant * v_s attenuation rule"),
			"OLSEN_ATTENUATION_RATIO": {Default: 0.05, Rule: coerce.Float,
				Description: "Olsen's constant for Q_mu = constant * v_s attenuation rule"},
			"PML_CONDITIONS":              flag("C-PML boundary conditions for a regional simulation"),
			"PML_INSTEAD_OF_FREE_SURFACE": flag("C-PML boundary conditions instead of free surface on the top"),
			"f0_FOR_PML": {Default: 12.7, Rule: coerce.Float,
				Description: "C-PML dominant frequency, see manual"},
			"STACEY_ABSORBING_CONDITIONS":    flag("Stacey absorbing boundary conditions for a regional simulation"),
			"STACEY_INSTEAD_OF_FREE_SURFACE": flag("Stacey absorbing top surface (defined in mesh as 'free_surface_file')"),
			"CREATE_SHAKEMAP":                flag("save shakemap files"),
			"MOVIE_SURFACE":                  flag("save velocity snapshot files only for surfaces"),
			"MOVIE_TYPE": {Default: 1, Rule: coerce.Int,
				Description: "1 to show the top surface, 2 to show all the external faces of the mesh"},
			"MOVIE_VOLUME":           flag("save the entire volumetric velocity snapshot files"),
			"SAVE_DISPLACEMENT":      flag("save displacement instead velocity in the snapshot files"),
			"USE_HIGHRES_FOR_MOVIES": flag("save high resolution snapshot files (all GLL points)"),
			"NTSTEP_BETWEEN_FRAMES": {Default: 200, Rule: coerce.Int,
				Description: "number of timesteps between 2 consecutive snapshots"},
			"HDUR_MOVIE": {Default: 0.0, Rule: coerce.Float,
				Description: "half duration for snapshot files"},
			"SAVE_MESH_FILES": flag("save VTK mesh files to check the mesh"),
			"LOCAL_PATH": {Default: "../OUTPUT_FILES/DATABASES_MPI", Rule: coerce.String,
				Description: "path to store the local database file on each node"},
			"NTSTEP_BETWEEN_OUTPUT_INFO": {Default: 500, Rule: coerce.Int,
				Description: "interval at which we output time step info and max of norm of displacement"},
			"NTSTEP_BETWEEN_OUTPUT_SEISMOS": {Default: 10000, Rule: coerce.Int,
				Description: "interval in time steps for writing of seismograms"},
			"NTSTEP_BETWEEN_READ_ADJSRC": {Default: 0, Rule: coerce.Int,
				Description: "interval in time steps for reading adjoint traces, 0 = read the whole adjoint sources at the same time"},
			"USE_FORCE_POINT_SOURCE":     flag("use a (tilted) FORCESOLUTION force point source instead of a CMTSOLUTION moment-tensor source"),
			"USE_RICKER_TIME_FUNCTION":   flag("use a Ricker source time function instead of the default source time functions"),
			"GPU_MODE":                   flag("set .true. for GPU support"),
			"ROTATE_PML_ACTIVATE":        flag("rotate C-PML boundary conditions (not implemented by the solver yet)"),
			"ROTATE_PML_ANGLE":           {Default: 0.0, Rule: coerce.Float, Description: "C-PML rotation angle"},
			"PRINT_SOURCE_TIME_FUNCTION": flag("print source time function"),
		},
		Render: render,
	}
}

func render(cfg *resolver.Config, events []domain.Event, stations []domain.Station) (map[string]string, error) {
	if len(events) != 1 {
		return nil, fmt.Errorf("%w, got %d", errEventCount, len(events))
	}
	return map[string]string{
		"Par_file":    parFile(cfg),
		"CMTSOLUTION": CMTSolution(events[0]),
		"STATIONS":    StationsFile(stations),
	}, nil
}

func parFile(cfg *resolver.Config) string {
	pairs := make([]string, 0, 2*cfg.Len())
	for _, name := range cfg.Names() {
		v, _ := cfg.Get(name)
		pairs = append(pairs, "{"+name+"}", FormatValue(v))
	}
	return strings.NewReplacer(pairs...).Replace(parFileTemplate)
}

// FormatValue writes reals the way the solver's own Par_file examples do:
// always with a decimal point.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return formatReal(x)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatReal(f float64) string {
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(f, 'e', -1, 64)
}

// MomentMagnitude returns Mw for a tensor given in N·m.
func MomentMagnitude(ev domain.Event) float64 {
	m0 := 1 / math.Sqrt2 * math.Sqrt(ev.Mrr*ev.Mrr+ev.Mtt*ev.Mtt+ev.Mpp*ev.Mpp)
	return 2.0/3.0*math.Log10(m0) - 6
}

// dyneCm converts N·m to dyne·cm.
const dyneCm = 1e7

// CMTSolution renders the source file in dyne·cm with the moment magnitude
// in the PDE header line.
func CMTSolution(ev domain.Event) string {
	t := ev.OriginTime.UTC()
	mag := MomentMagnitude(ev)
	seconds := float64(t.Second()) + float64(t.Nanosecond()/1000)/1e6
	name := t.Format("2006-01-02T15:04:05.000000Z") + "_" + fmt.Sprintf("%.1f", mag)

	var b strings.Builder
	fmt.Fprintf(&b, "PDE %d %d %d %d %d %.2f %.5f %.5f %.5f %.1f %.1f %s\n",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), seconds,
		ev.Latitude, ev.Longitude, ev.DepthInKm, mag, mag, name)
	b.WriteString("event name:      0000000\n")
	b.WriteString("time shift:       0.0000\n")
	fmt.Fprintf(&b, "half duration:    %.4f\n", 0.0)
	fmt.Fprintf(&b, "latitude:       %.5f\n", ev.Latitude)
	fmt.Fprintf(&b, "longitude:      %.5f\n", ev.Longitude)
	fmt.Fprintf(&b, "depth:% 17.5f\n", ev.DepthInKm)
	fmt.Fprintf(&b, "Mrr:         %.6g\n", ev.Mrr*dyneCm)
	fmt.Fprintf(&b, "Mtt:         %.6g\n", ev.Mtt*dyneCm)
	fmt.Fprintf(&b, "Mpp:         %.6g\n", ev.Mpp*dyneCm)
	fmt.Fprintf(&b, "Mrt:         %.6g\n", ev.Mrt*dyneCm)
	fmt.Fprintf(&b, "Mrp:         %.6g\n", ev.Mrp*dyneCm)
	fmt.Fprintf(&b, "Mtp:         %.6g", ev.Mtp*dyneCm)
	return b.String()
}

// StationsFile renders one "STA NET lat lon elevation burial" line per station.
func StationsFile(stations []domain.Station) string {
	lines := make([]string, len(stations))
	for i, st := range stations {
		lines[i] = fmt.Sprintf("%s %s %.5f %.5f %.1f %.1f",
			st.Code(), st.Network(), st.Latitude, st.Longitude, st.ElevationInM, st.LocalDepthInM)
	}
	return strings.Join(lines, "\n")
}
