package source

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	errNotSEED       = errors.New("not a SEED volume")
	errMalformedSEED = errors.New("malformed SEED blockette")
)

// IsSEED reports whether data starts with a SEED volume header record.
func IsSEED(data []byte) bool {
	if len(data) < 21 || data[6] != 'V' || string(data[8:11]) != "010" {
		return false
	}
	for _, c := range data[:6] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseSEED reads the stations of a dataless SEED volume. Each station takes
// its id from blockette 050 and its coordinates from its first channel
// (blockette 052).
func ParseSEED(data []byte) ([]map[string]any, error) {
	if !IsSEED(data) {
		return nil, errNotSEED
	}
	exp, err := strconv.Atoi(string(data[19:21]))
	if err != nil || exp < 8 || exp > 16 {
		return nil, fmt.Errorf("%w: record length exponent %q", errMalformedSEED, data[19:21])
	}
	size := 1 << exp

	// Station control records, continuation records included.
	var stream []byte
	for off := 0; off+8 <= len(data); off += size {
		rec := data[off:min(off+size, len(data))]
		if rec[6] == 'S' {
			stream = append(stream, rec[8:]...)
		}
	}

	var (
		out     []map[string]any
		current map[string]any
	)
	for i := 0; i < len(stream); {
		if stream[i] == ' ' || stream[i] == 0 {
			i++
			continue
		}
		if i+7 > len(stream) {
			return nil, fmt.Errorf("%w: truncated at byte %d", errMalformedSEED, i)
		}
		n, err := strconv.Atoi(string(stream[i+3 : i+7]))
		if err != nil || n < 7 || i+n > len(stream) {
			return nil, fmt.Errorf("%w: bad length at byte %d", errMalformedSEED, i)
		}
		b := stream[i : i+n]
		i += n

		switch string(b[:3]) {
		case "050":
			if len(b) < 14 {
				return nil, fmt.Errorf("%w: short blockette 050", errMalformedSEED)
			}
			current = map[string]any{
				"id": strings.TrimSpace(string(b[n-2:])) + "." + strings.TrimSpace(string(b[7:12])),
			}
			out = append(out, current)
		case "052":
			if current == nil || current["latitude"] != nil {
				continue
			}
			if err := channelCoordinatesSEED(b, current); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// channelCoordinatesSEED copies latitude, longitude, elevation and local
// depth out of blockette 052. They follow the variable-length comment field.
func channelCoordinatesSEED(b []byte, m map[string]any) error {
	const commentAt = 19
	if len(b) <= commentAt {
		return fmt.Errorf("%w: short blockette 052", errMalformedSEED)
	}
	tilde := bytes.IndexByte(b[commentAt:], '~')
	if tilde < 0 {
		return fmt.Errorf("%w: unterminated blockette 052 comment", errMalformedSEED)
	}
	p := commentAt + tilde + 1 + 6
	fields := []struct {
		name  string
		width int
	}{
		{"latitude", 10},
		{"longitude", 11},
		{"elevation_in_m", 7},
		{"local_depth_in_m", 5},
	}
	for _, f := range fields {
		if p+f.width > len(b) {
			return fmt.Errorf("%w: short blockette 052", errMalformedSEED)
		}
		v, err := parseReal(string(b[p : p+f.width]))
		if err != nil {
			return fmt.Errorf("%w: blockette 052 %s: %v", errMalformedSEED, f.name, err)
		}
		m[f.name] = v
		p += f.width
	}
	return nil
}

type xseedDocument struct {
	XMLName  xml.Name       `xml:"xseed"`
	Stations []xseedStation `xml:"station_control_header"`
}

type xseedStation struct {
	Identifier struct {
		StationCallLetters string `xml:"station_call_letters"`
		NetworkCode        string `xml:"network_code"`
	} `xml:"station_identifier"`
	Channels []struct {
		Latitude   *string `xml:"latitude"`
		Longitude  *string `xml:"longitude"`
		Elevation  *string `xml:"elevation"`
		LocalDepth *string `xml:"local_depth"`
	} `xml:"channel_identifier"`
}

// ParseXSEED reads the stations of an XML-SEED document the same way as
// ParseSEED.
func ParseXSEED(r io.Reader) ([]map[string]any, error) {
	var doc xseedDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode XSEED: %w", err)
	}
	out := make([]map[string]any, 0, len(doc.Stations))
	for _, st := range doc.Stations {
		m := map[string]any{
			"id": strings.TrimSpace(st.Identifier.NetworkCode) + "." + strings.TrimSpace(st.Identifier.StationCallLetters),
		}
		if len(st.Channels) > 0 {
			ch := st.Channels[0]
			setIfPresent(m, "latitude", ch.Latitude)
			setIfPresent(m, "longitude", ch.Longitude)
			setIfPresent(m, "elevation_in_m", ch.Elevation)
			setIfPresent(m, "local_depth_in_m", ch.LocalDepth)
		}
		out = append(out, m)
	}
	return out, nil
}

// xmlRoot returns the local name of the document element.
func xmlRoot(data []byte) string {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err != nil {
			return ""
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local
		}
	}
}
