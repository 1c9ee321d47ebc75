package source

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/wfs-input-generator/internal/records"
)

type xmlParser func(io.Reader) ([]map[string]any, error)

// LoadEvents reads a QuakeML or JSON event file. A *PartialError comes back
// with the usable events when only some QuakeML events could be read.
func LoadEvents(path string) ([]map[string]any, error) {
	return load(path, ParseEvents)
}

// LoadStations reads a station file in any format ParseStations accepts.
func LoadStations(path string) ([]map[string]any, error) {
	return load(path, ParseStations)
}

// ParseEvents sniffs data and parses it as QuakeML or JSON.
func ParseEvents(data []byte) ([]map[string]any, error) {
	return parse(data, ParseQuakeML)
}

// ParseStations sniffs data and parses it as a SAC binary header, a dataless
// SEED volume, XML-SEED, StationXML or JSON.
func ParseStations(data []byte) ([]map[string]any, error) {
	switch {
	case IsSAC(data):
		return ParseSAC(data)
	case IsSEED(data):
		return ParseSEED(data)
	case IsXML(data) && xmlRoot(data) == "xseed":
		return ParseXSEED(bytes.NewReader(data))
	}
	return parse(data, ParseStationXML)
}

func load(path string, parseData func([]byte) ([]map[string]any, error)) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	out, err := parseData(data)
	if err != nil {
		return out, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func parse(data []byte, parseXML xmlParser) ([]map[string]any, error) {
	if IsXML(data) {
		return parseXML(bytes.NewReader(data))
	}
	return records.Decode(data)
}

// IsXML reports whether the first non-space byte opens an XML element.
func IsXML(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	return len(trimmed) > 0 && trimmed[0] == '<'
}
