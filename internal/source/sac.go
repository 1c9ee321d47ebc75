package source

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	sacHeaderSize = 632
	sacUndefined  = -12345.0
)

// Byte offsets into the SAC header.
const (
	sacStla   = 31 * 4
	sacStlo   = 32 * 4
	sacStel   = 33 * 4
	sacStdp   = 34 * 4
	sacNvhdr  = 76 * 4
	sacKstnm  = 440
	sacKnetwk = 608
)

var errNotSAC = errors.New("not a SAC binary file")

// IsSAC reports whether data starts with a SAC binary header in either byte
// order.
func IsSAC(data []byte) bool {
	_, ok := sacByteOrder(data)
	return ok
}

func sacByteOrder(data []byte) (binary.ByteOrder, bool) {
	if len(data) < sacHeaderSize {
		return nil, false
	}
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if v := int32(order.Uint32(data[sacNvhdr:])); v == 6 || v == 7 {
			return order, true
		}
	}
	return nil, false
}

// ParseSAC reads the station described by a SAC binary header. Coordinates
// left undefined in the header are omitted, so such a station fails
// validation when added.
func ParseSAC(data []byte) ([]map[string]any, error) {
	order, ok := sacByteOrder(data)
	if !ok {
		return nil, errNotSAC
	}

	text := func(off int) string {
		s := strings.TrimSpace(strings.TrimRight(string(data[off:off+8]), "\x00"))
		if s == "-12345" {
			return ""
		}
		return s
	}
	m := map[string]any{"id": text(sacKnetwk) + "." + text(sacKstnm)}

	for _, f := range []struct {
		name string
		off  int
	}{
		{"latitude", sacStla},
		{"longitude", sacStlo},
		{"elevation_in_m", sacStel},
		{"local_depth_in_m", sacStdp},
	} {
		v := math.Float32frombits(order.Uint32(data[f.off:]))
		if v == sacUndefined {
			continue
		}
		// Shortest decimal of the float32, so 48.16 stays 48.16.
		m[f.name], _ = strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
	}
	return []map[string]any{m}, nil
}
