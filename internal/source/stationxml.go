package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

type stationXMLDocument struct {
	XMLName  xml.Name            `xml:"FDSNStationXML"`
	Networks []stationXMLNetwork `xml:"Network"`
}

type stationXMLNetwork struct {
	Code     string              `xml:"code,attr"`
	Stations []stationXMLStation `xml:"Station"`
}

type stationXMLStation struct {
	Code      string              `xml:"code,attr"`
	Latitude  *string             `xml:"Latitude"`
	Longitude *string             `xml:"Longitude"`
	Elevation *string             `xml:"Elevation"`
	Channels  []stationXMLChannel `xml:"Channel"`
}

type stationXMLChannel struct {
	Latitude  *string `xml:"Latitude"`
	Longitude *string `xml:"Longitude"`
	Elevation *string `xml:"Elevation"`
	Depth     *string `xml:"Depth"`
}

type coordinates struct {
	lat, lon, elevation, depth float64
}

// ParseStationXML extracts one station mapping per FDSN StationXML station.
// When every channel carries the same complete coordinates those are used,
// burial depth included; otherwise the station coordinates are used.
func ParseStationXML(r io.Reader) ([]map[string]any, error) {
	var doc stationXMLDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode StationXML: %w", err)
	}

	var out []map[string]any
	for _, network := range doc.Networks {
		for _, st := range network.Stations {
			m := map[string]any{"id": strings.TrimSpace(network.Code) + "." + strings.TrimSpace(st.Code)}
			if c, ok := commonChannelCoordinates(st.Channels); ok {
				m["latitude"] = c.lat
				m["longitude"] = c.lon
				m["elevation_in_m"] = c.elevation
				m["local_depth_in_m"] = c.depth
			} else {
				setIfPresent(m, "latitude", st.Latitude)
				setIfPresent(m, "longitude", st.Longitude)
				setIfPresent(m, "elevation_in_m", st.Elevation)
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func commonChannelCoordinates(channels []stationXMLChannel) (coordinates, bool) {
	var (
		first coordinates
		seen  bool
	)
	for _, ch := range channels {
		c, ok := channelCoordinates(ch)
		if !ok {
			return coordinates{}, false
		}
		if seen && c != first {
			return coordinates{}, false
		}
		first, seen = c, true
	}
	return first, seen
}

func channelCoordinates(ch stationXMLChannel) (coordinates, bool) {
	var c coordinates
	for _, f := range []struct {
		raw *string
		dst *float64
	}{
		{ch.Latitude, &c.lat},
		{ch.Longitude, &c.lon},
		{ch.Elevation, &c.elevation},
		{ch.Depth, &c.depth},
	} {
		if f.raw == nil {
			return coordinates{}, false
		}
		v, err := parseReal(*f.raw)
		if err != nil {
			return coordinates{}, false
		}
		*f.dst = v
	}
	return c, true
}

// setIfPresent leaves absent or unparsable values out so that validation
// reports the field as missing.
func setIfPresent(m map[string]any, key string, raw *string) {
	if raw == nil {
		return
	}
	if v, err := parseReal(*raw); err == nil {
		m[key] = v
	}
}

func parseReal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return cast.ToFloat64E(s)
}
