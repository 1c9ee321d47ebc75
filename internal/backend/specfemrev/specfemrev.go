// Package specfemrev renders SPECFEM3D_CARTESIAN input for the solver
// revision 9e2aad47d52f97, whose Par_file adds external code coupling, a
// SEP model directory and the ADIOS I/O switches.
package specfemrev

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
const Name = "SPECFEM3D_CARTESIAN_9e2aad47d52f97"

var errEventCount = errors.New("the SPECFEM backend can currently only deal with a single event")

func flag(def, description string) schema.Optional {
	return schema.Optional{Default: def, Rule: specfem.Logical, Description: description}
}

// Definition returns the backend definition. The parameters are those of
// SPECFEM3D_CARTESIAN plus the ones this revision introduced.
func Definition() backend.Definition {
	def := specfem.Definition()
	def.Description = "SPECFEM3D_CARTESIAN at revision 9e2aad47d52f97"

	added := map[string]schema.Optional{
		"SEP_MODEL_DIRECTORY": {Default: "./DATA/my_SEP_model/", Rule: coerce.String,
			Description: "SEP model folder if you are using one"},
		"COUPLE_WITH_EXTERNAL_CODE": flag(".false.", "couple with an external code such as DSM, AxiSEM or FK"),
		"EXTERNAL_CODE_TYPE": {Default: 1, Rule: coerce.Int,
			Description: "1 = DSM, 2 = AxiSEM, 3 = FK"},
		"TRACTION_PATH": {Default: "./DATA/DSM_tractions_for_specfem3D/", Rule: coerce.String,
			Description: "directory of the tractions computed by the external code"},
		"MESH_A_CHUNK_OF_THE_EARTH": flag(".true.", "mesh a chunk of the Earth for coupled simulations"),
		"ADIOS_ENABLED":             flag(".false.", "use ADIOS for I/O"),
		"ADIOS_FOR_DATABASES":       flag(".false.", "use ADIOS for the databases"),
		"ADIOS_FOR_MESH":            flag(".false.", "use ADIOS for the mesh"),
		"ADIOS_FOR_FORWARD_ARRAYS":  flag(".false.", "use ADIOS for the forward arrays"),
		"ADIOS_FOR_KERNELS":         flag(".false.", "use ADIOS for the kernels"),
	}
	for name, p := range added {
		def.Optional[name] = p
	}
	def.Render = render
	return def
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

func parFile(cfg *resolver.Config) string {
	pairs := make([]string, 0, 2*cfg.Len())
	for _, name := range cfg.Names() {
		v, _ := cfg.Get(name)
		pairs = append(pairs, "{"+name+"}", specfem.FormatValue(v))
	}
	return strings.NewReplacer(pairs...).Replace(parFileTemplate)
}
