// Package specfemepos renders input files for the SPECFEM3D build used by
// the EPOS project. Its Par_file is written section by section; the source
// and station files are the ones SPECFEM3D_CARTESIAN reads.
package specfemepos

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
const Name = "SPECFEM3D_GLOBE_EPOS"

var errEventCount = errors.New("the SPECFEM backend can currently only deal with a single event")

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
		Description: "SPECFEM3D as built for the EPOS project",
		Required: map[string]schema.Required{
			"SIMULATION_TYPE": {Rule: coerce.Int,
				Description: "forward or adjoint simulation; 1 = forward, 2 = adjoint, 3 = both simultaneously"},
			"NPROC": {Rule: coerce.Int, Description: "number of MPI processors"},
			"NSTEP": {Rule: coerce.Int, Description: "number of time steps"},
			"DT":    {Rule: coerce.Float, Description: "time step"},
		},
		Optional: map[string]schema.Optional{
			"NOISE_TOMOGRAPHY":        integer(0, "0 = earthquake simulation, 1/2/3 = three steps in noise simulation"),
			"SAVE_FORWARD":            logical(false, "save forward wavefield"),
			"UTM_PROJECTION_ZONE":     integer(11, "UTM projection zone, negative in the Southern hemisphere"),
			"SUPPRESS_UTM_PROJECTION": logical(true, "suppress UTM projection"),

			"USE_LDDRK":                     logical(false, "use LDDRK time scheme"),
			"INCREASE_CFL_FOR_LDDRK":        logical(false, "increase CFL for LDDRK"),
			"RATIO_BY_WHICH_TO_INCREASE_IT": decimal(1.4, "ratio by which to increase the CFL"),

			"NGNOD":                       integer(8, "nodes per hexahedron, 8 or 27"),
			"MODEL":                       text("default", "model; 'default' uses the parameters described by the mesh"),
			"TOMOGRAPHY_PATH":             text("./DATA/tomo_files/", "path for external tomographic models files"),
			"SEP_MODEL_DIRECTORY":         text("./DATA/my_SEP_model/", "SEP model folder if you are using one"),
			"APPROXIMATE_OCEAN_LOAD":      logical(false, "use ocean loading"),
			"TOPOGRAPHY":                  logical(false, "add topography"),
			"ATTENUATION":                 logical(false, "use attenuation"),
			"ANISOTROPY":                  logical(false, "use anisotropy"),
			"GRAVITY":                     logical(false, "use gravity"),
			"ATTENUATION_f0_REFERENCE":    decimal(0.33333, "reference frequency of the velocity model"),
			"MIN_ATTENUATION_PERIOD":      decimal(999999998.0, "min attenuation period"),
			"MAX_ATTENUATION_PERIOD":      decimal(999999999.0, "max attenuation period"),
			"COMPUTE_FREQ_BAND_AUTOMATIC": logical(true, "compute the attenuation band from the mesh resolution"),
			"USE_OLSEN_ATTENUATION":       logical(false, "use Olsen's attenuation rule"),
			"OLSEN_ATTENUATION_RATIO":     decimal(0.05, "Olsen's attenuation ratio"),

			"PML_CONDITIONS":                 logical(false, "use C-PML boundaries"),
			"PML_INSTEAD_OF_FREE_SURFACE":    logical(false, "use C-PML also at the top"),
			"f0_FOR_PML":                     decimal(0.05555, "dominant frequency for the C-PMLs"),
			"STACEY_ABSORBING_CONDITIONS":    logical(true, "Stacey absorbing boundaries"),
			"STACEY_INSTEAD_OF_FREE_SURFACE": logical(false, "Stacey absorbing boundaries also at the top"),
			"BOTTOM_FREE_SURFACE":            logical(false, "free surface at the bottom"),

			"CREATE_SHAKEMAP":            logical(false, "create a shakemap"),
			"MOVIE_SURFACE":              logical(false, "surface movie"),
			"MOVIE_TYPE":                 integer(1, "1 to show the top surface, 2 to show all the external faces of the mesh"),
			"MOVIE_VOLUME":               logical(false, "volumetric movie"),
			"SAVE_DISPLACEMENT":          logical(false, "save the displacement"),
			"USE_HIGHRES_FOR_MOVIES":     logical(false, "use high resolution for the movies"),
			"NTSTEP_BETWEEN_FRAMES":      integer(200, "time steps between the frames"),
			"HDUR_MOVIE":                 decimal(0.0, "movie half duration"),
			"SAVE_MESH_FILES":            logical(true, "save the mesh files to check them"),
			"LOCAL_PATH":                 text("./OUTPUT_FILES/DATABASES_MPI", "path to the local database"),
			"NTSTEP_BETWEEN_OUTPUT_INFO": integer(500, "interval at which information is printed"),

			"USE_FORCE_POINT_SOURCE":     logical(false, "use a force source"),
			"USE_RICKER_TIME_FUNCTION":   logical(false, "use a Ricker source wavelet"),
			"USE_EXTERNAL_SOURCE_FILE":   logical(false, "use an external source time function file"),
			"PRINT_SOURCE_TIME_FUNCTION": logical(false, "print the source time function"),
			"USE_SOURCE_ENCODING":        logical(false, "use source encoding"),

			"NTSTEP_BETWEEN_OUTPUT_SEISMOS": integer(10000, "interval in time steps for writing seismograms"),
			"SAVE_SEISMOGRAMS_DISPLACEMENT": logical(true, "save displacement seismograms"),
			"SAVE_SEISMOGRAMS_VELOCITY":     logical(false, "save velocity seismograms"),
			"SAVE_SEISMOGRAMS_ACCELERATION": logical(false, "save acceleration seismograms"),
			"SAVE_SEISMOGRAMS_PRESSURE":     logical(false, "save pressure seismograms"),
			"USE_BINARY_FOR_SEISMOGRAMS":    logical(false, "use binary output for seismograms"),
			"SU_FORMAT":                     logical(false, "use the Seismic Unix format"),
			"WRITE_SEISMOGRAMS_BY_MASTER":   logical(false, "write seismograms by the master process"),
			"SAVE_ALL_SEISMOS_IN_ONE_FILE":  logical(false, "save all seismograms in one file"),
			"USE_TRICK_FOR_BETTER_PRESSURE": logical(false, "increase accuracy of pressure seismograms"),

			"OUTPUT_ENERGY":                logical(false, "output energy curves"),
			"NTSTEP_BETWEEN_OUTPUT_ENERGY": integer(10, "time interval at which energy is written"),

			"NTSTEP_BETWEEN_READ_ADJSRC": integer(0, "interval in time steps for reading adjoint traces, 0 = all at once"),
			"ANISOTROPIC_KL":             logical(false, "compute anisotropic kernels"),
			"SAVE_TRANSVERSE_KL":         logical(false, "compute transverse isotropic kernels"),
			"APPROXIMATE_HESS_KL":        logical(false, "approximate the Hessian for preconditioning"),
			"SAVE_MOHO_MESH":             logical(false, "save the Moho mesh and compute Moho boundary kernels"),

			"NUMBER_OF_SIMULTANEOUS_RUNS":   integer(1, "number of simultaneous runs"),
			"BROADCAST_SAME_MESH_AND_MODEL": logical(false, "broadcast mesh and model to simultaneous runs"),

			"GPU_MODE":                 logical(false, "use GPUs"),
			"ADIOS_ENABLED":            logical(false, "enable ADIOS"),
			"ADIOS_FOR_DATABASES":      logical(false, "use ADIOS for the database"),
			"ADIOS_FOR_MESH":           logical(false, "use ADIOS for the mesh"),
			"ADIOS_FOR_FORWARD_ARRAYS": logical(false, "use ADIOS for the forward arrays"),
			"ADIOS_FOR_KERNELS":        logical(false, "use ADIOS for kernels"),
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
		"CMTSOLUTION": specfem.CMTSolution(events[0]),
		"STATIONS":    specfem.StationsFile(stations),
	}, nil
}

// parFile has no trailing newline.
func parFile(cfg *resolver.Config) string {
	var b strings.Builder
	for i, sec := range parFileSections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "# %s\n", sec.title)
		for _, name := range sec.names {
			v, _ := cfg.Get(name)
			fmt.Fprintf(&b, "%-32s= %s\n", name, specfem.FormatValue(v))
		}
	}
	return strings.TrimSpace(b.String())
}
