// Package specfemglobe renders Par_file, CMTSOLUTION and STATIONS for
// SPECFEM3D_GLOBE runs coupled to the CEM mesher.
package specfemglobe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/specfem"
	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/couchcryptid/wfs-input-generator/internal/schema"
)

// Name is the registry name of the backend.
const Name = "SPECFEM3D_GLOBE_CEM"

var errEventCount = errors.New("the SPECFEM3D_GLOBE backend can only deal with a single event")

// seismogramFormats maps OUTPUT_SEISMOS_FORMAT to the Par_file switch it turns on.
var seismogramFormats = map[string]string{
	"ASCII":        "OUTPUT_SEISMOS_ASCII_TEXT",
	"SAC_ALPHANUM": "OUTPUT_SEISMOS_SAC_ALPHANUM",
	"SAC_BINARY":   "OUTPUT_SEISMOS_SAC_BINARY",
	"ASDF":         "OUTPUT_SEISMOS_ASDF",
}

var seismogramFormat = coerce.Custom("one of ASCII, SAC_ALPHANUM, SAC_BINARY, ASDF", func(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("cannot use %T as a seismogram format", v)
	}
	f := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := seismogramFormats[f]; !ok {
		return nil, fmt.Errorf("unknown seismogram format %q", s)
	}
	return f, nil
})

func logical(def bool, description string) schema.Optional {
	d := ".false."
	if def {
		d = ".true."
	}
	return schema.Optional{Default: d, Rule: specfem.Logical, Description: description}
}

func integer(def int, description string) schema.Optional {
	return schema.Optional{Default: def, Rule: coerce.Int, Description: description}
}

func decimal(def float64, description string) schema.Optional {
	return schema.Optional{Default: def, Rule: coerce.Float, Description: description}
}

func text(def, description string) schema.Optional {
	return schema.Optional{Default: def, Rule: coerce.String, Description: description}
}

// Definition returns the backend definition.
func Definition() backend.Definition {
	return backend.Definition{
		Description: "SPECFEM3D_GLOBE with support for the CEM project",
		Required: map[string]schema.Required{
			"NPROC_XI":                 {Rule: coerce.Int, Description: "number of MPI processors along the xi side of the first chunk"},
			"NPROC_ETA":                {Rule: coerce.Int, Description: "number of MPI processors along the eta side of the first chunk"},
			"RECORD_LENGTH_IN_MINUTES": {Rule: coerce.Float, Description: "record length in minutes"},
			"SIMULATION_TYPE": {Rule: coerce.Int,
				Description: "forward or adjoint simulation, 1 = forward, 2 = adjoint, 3 = both simultaneously"},
			"NCHUNKS": {Rule: coerce.Int, Description: "number of chunks (1, 2, 3 or 6)"},
			"NEX_XI": {Rule: coerce.Int,
				Description: "number of elements at the surface along the xi side of the first chunk (multiple of 16 and 8 * multiple of NPROC_XI)"},
			"NEX_ETA": {Rule: coerce.Int,
				Description: "number of elements at the surface along the eta side of the first chunk (multiple of 16 and 8 * multiple of NPROC_ETA)"},
			"MODEL": {Rule: coerce.String,
				Description: "the model; CEM_ACCEPT loads a model from the CEM mesher, CEM_REQUEST generates a CEM request"},
		},
		Optional: map[string]schema.Optional{
			"NOISE_TOMOGRAPHY":             integer(0, "noise tomography step (1, 2, 3), 0 for earthquake simulations"),
			"SAVE_FORWARD":                 logical(false, "save last frame of forward simulation"),
			"ANGULAR_WIDTH_XI_IN_DEGREES":  decimal(90, "width of one side of the chunk"),
			"ANGULAR_WIDTH_ETA_IN_DEGREES": decimal(90, "width of the other side of the chunk"),
			"CENTER_LATITUDE_IN_DEGREES":   decimal(40, "latitude of the chunk center"),
			"CENTER_LONGITUDE_IN_DEGREES":  decimal(10, "longitude of the chunk center"),
			"GAMMA_ROTATION_AZIMUTH":       decimal(20, "rotation of the chunk about its center, counter clockwise from due North in degrees"),

			"OCEANS":               logical(false, "earth model: oceans"),
			"ELLIPTICITY":          logical(false, "earth model: ellipticity"),
			"TOPOGRAPHY":           logical(false, "earth model: topography"),
			"GRAVITY":              logical(false, "earth model: gravity"),
			"ROTATION":             logical(false, "earth model: rotation"),
			"ATTENUATION":          logical(false, "earth model: attenuation"),
			"ABSORBING_CONDITIONS": logical(false, "absorbing boundary conditions for a regional simulation"),

			"ATTENUATION_1D_WITH_3D_STORAGE": logical(true, ""),
			"PARTIAL_PHYS_DISPERSION_ONLY":   logical(true, ""),
			"UNDO_ATTENUATION":               logical(false, "undo attenuation exactly for kernels or forward runs with SAVE_FORWARD"),
			"NT_DUMP_ATTENUATION":            integer(100, "how often restart files are dumped to undo attenuation"),
			"EXACT_MASS_MATRIX_FOR_ROTATION": logical(false, "use three mass matrices to handle rotation exactly"),

			"USE_LDDRK":                     logical(false, "LDDRK high-order time scheme instead of Newmark"),
			"INCREASE_CFL_FOR_LDDRK":        logical(true, "multiply the Newmark time step by RATIO_BY_WHICH_TO_INCREASE_IT when LDDRK is on"),
			"RATIO_BY_WHICH_TO_INCREASE_IT": decimal(1.5, ""),

			"MOVIE_SURFACE":         logical(false, ""),
			"MOVIE_VOLUME":          logical(false, ""),
			"MOVIE_COARSE":          logical(false, "save movie only at corners of elements"),
			"NTSTEP_BETWEEN_FRAMES": integer(100, ""),
			"HDUR_MOVIE":            decimal(0, ""),
			"MOVIE_VOLUME_TYPE":     integer(2, "1 strain, 2 time integral of strain, 3 mu times time integral of strain, 4 trace and deviatoric stress, 5 displacement, 6 velocity"),
			"MOVIE_TOP_KM":          decimal(-100, "top of the movie volume in km, -100 stores the surface"),
			"MOVIE_BOTTOM_KM":       decimal(1000, ""),
			"MOVIE_WEST_DEG":        decimal(-90, ""),
			"MOVIE_EAST_DEG":        decimal(90, ""),
			"MOVIE_NORTH_DEG":       decimal(90, ""),
			"MOVIE_SOUTH_DEG":       decimal(-90, ""),
			"MOVIE_START":           integer(0, ""),
			"MOVIE_STOP":            integer(40000, ""),

			"SAVE_MESH_FILES":               logical(false, "save mesh files to check the mesh"),
			"NUMBER_OF_RUNS":                integer(1, "number of runs, 1 for no restart files"),
			"NUMBER_OF_THIS_RUN":            integer(1, ""),
			"LOCAL_PATH":                    text("./DATABASES_MPI", "path to store the local database files on each node"),
			"LOCAL_TMP_PATH":                text("./DATABASES_MPI", "temporary wavefield, kernel and movie files"),
			"NTSTEP_BETWEEN_OUTPUT_INFO":    integer(1000, "interval at which time step info is printed"),
			"NTSTEP_BETWEEN_OUTPUT_SEISMOS": integer(5000000, "interval in time steps for temporary writing of seismograms"),
			"NTSTEP_BETWEEN_READ_ADJSRC":    integer(1000, ""),
			"OUTPUT_SEISMOS_FORMAT": {Default: "SAC_BINARY", Rule: seismogramFormat,
				Description: "seismogram format: ASCII, SAC_ALPHANUM, SAC_BINARY or ASDF"},
			"ROTATE_SEISMOGRAMS_RT":        logical(false, "rotate seismograms to Radial-Transverse-Z instead of North-East-Z"),
			"WRITE_SEISMOGRAMS_BY_MASTER":  logical(true, "the master process writes all seismograms"),
			"SAVE_ALL_SEISMOS_IN_ONE_FILE": logical(false, "save all seismograms in one combined file"),
			"USE_BINARY_FOR_LARGE_FILE":    logical(false, ""),
			"RECEIVERS_CAN_BE_BURIED":      logical(true, "allow buried receivers"),
			"PRINT_SOURCE_TIME_FUNCTION":   logical(false, "print source time function"),

			"ANISOTROPIC_KL":          logical(false, "compute anisotropic kernels in crust and mantle"),
			"SAVE_TRANSVERSE_KL_ONLY": logical(false, "output only transverse isotropic kernels"),
			"APPROXIMATE_HESS_KL":     logical(false, "output the approximate Hessian in the crust mantle region"),
			"USE_FULL_TISO_MANTLE":    logical(false, "force transverse isotropy for all mantle elements"),
			"SAVE_SOURCE_MASK":        logical(false, "output a kernel mask to zero out the source region"),
			"SAVE_REGULAR_KL":         logical(false, "output kernels on a regular grid"),
			"GPU_MODE":                logical(false, "use GPUs"),

			"ADIOS_ENABLED":              logical(false, "use the ADIOS library for I/O"),
			"ADIOS_FOR_FORWARD_ARRAYS":   logical(true, ""),
			"ADIOS_FOR_MPI_ARRAYS":       logical(true, ""),
			"ADIOS_FOR_ARRAYS_SOLVER":    logical(true, ""),
			"ADIOS_FOR_SOLVER_MESHFILES": logical(true, ""),
			"ADIOS_FOR_AVS_DX":           logical(true, ""),
			"ADIOS_FOR_KERNELS":          logical(true, ""),
			"ADIOS_FOR_MODELS":           logical(true, ""),

			"SOURCE_TIME_FUNCTION": {Default: []float64{}, Rule: coerce.FloatSlice,
				Description: "external source time function; a Gaussian wavelet is used when empty"},
		},
		Render: render,
	}
}

func render(cfg *resolver.Config, events []domain.Event, stations []domain.Station) (map[string]string, error) {
	if len(events) != 1 {
		return nil, fmt.Errorf("%w, got %d", errEventCount, len(events))
	}
	files := map[string]string{
		"Par_file":    parFile(cfg),
		"CMTSOLUTION": specfem.CMTSolution(events[0]),
		"STATIONS":    specfem.StationsFile(stations),
	}
	if stf := cfg.Floats("SOURCE_TIME_FUNCTION"); len(stf) > 0 {
		files["stf"] = stfFile(stf)
	}
	return files, nil
}

// parFile writes every parameter section by section. The derived switches
// follow OUTPUT_SEISMOS_FORMAT and SOURCE_TIME_FUNCTION.
func parFile(cfg *resolver.Config) string {
	derived := map[string]any{
		"EXTERNAL_SOURCE_TIME_FUNCTION": ".false.",
	}
	for _, key := range seismogramFormats {
		derived[key] = ".false."
	}
	derived[seismogramFormats[cfg.Text("OUTPUT_SEISMOS_FORMAT")]] = ".true."
	if len(cfg.Floats("SOURCE_TIME_FUNCTION")) > 0 {
		derived["EXTERNAL_SOURCE_TIME_FUNCTION"] = ".true."
	}

	value := func(name string) string {
		if v, ok := derived[name]; ok {
			return specfem.FormatValue(v)
		}
		v, _ := cfg.Get(name)
		return specfem.FormatValue(v)
	}

	var b strings.Builder
	for i, sec := range parFileSections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "# %s\n", sec.title)
		for _, name := range sec.names {
			fmt.Fprintf(&b, "%-32s= %s\n", name, value(name))
		}
	}
	return b.String()
}

func stfFile(samples []float64) string {
	lines := make([]string, len(samples))
	for i, s := range samples {
		lines[i] = fmt.Sprintf("%e", s)
	}
	return strings.Join(lines, "\n")
}
