// Package source reads event and station records from files: QuakeML and
// FDSN StationXML documents, or JSON in the record layout.
//
// Parsers return loosely typed mappings in the record layout understood by
// domain.EventFromMap and domain.StationFromMap; validation happens there.
package source

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/domain"
)

type quakeMLDocument struct {
	XMLName xml.Name       `xml:"quakeml"`
	Events  []quakeMLEvent `xml:"eventParameters>event"`
}

type quakeMLEvent struct {
	PublicID                  string             `xml:"publicID,attr"`
	PreferredOriginID         string             `xml:"preferredOriginID"`
	PreferredFocalMechanismID string             `xml:"preferredFocalMechanismID"`
	Descriptions              []quakeMLText      `xml:"description"`
	Origins                   []quakeMLOrigin    `xml:"origin"`
	FocalMechanisms           []quakeMLFocalMech `xml:"focalMechanism"`
}

type quakeMLText struct {
	Text string `xml:"text"`
}

type quakeMLQuantity struct {
	Value *string `xml:"value"`
}

type quakeMLOrigin struct {
	PublicID  string           `xml:"publicID,attr"`
	Time      *quakeMLQuantity `xml:"time"`
	Latitude  *quakeMLQuantity `xml:"latitude"`
	Longitude *quakeMLQuantity `xml:"longitude"`
	Depth     *quakeMLQuantity `xml:"depth"`
}

type quakeMLFocalMech struct {
	PublicID     string               `xml:"publicID,attr"`
	MomentTensor *quakeMLMomentTensor `xml:"momentTensor"`
}

type quakeMLMomentTensor struct {
	DerivedOriginID string         `xml:"derivedOriginID"`
	Tensor          *quakeMLTensor `xml:"tensor"`
}

type quakeMLTensor struct {
	Mrr *quakeMLQuantity `xml:"Mrr"`
	Mtt *quakeMLQuantity `xml:"Mtt"`
	Mpp *quakeMLQuantity `xml:"Mpp"`
	Mrt *quakeMLQuantity `xml:"Mrt"`
	Mrp *quakeMLQuantity `xml:"Mrp"`
	Mtp *quakeMLQuantity `xml:"Mtp"`
}

var (
	errNoOrigin         = errors.New("event has no origin")
	errNoFocalMechanism = errors.New("event has no focal mechanism")
	errNoMomentTensor   = errors.New("focal mechanism has no moment tensor")
)

// ParseQuakeML extracts one event mapping per QuakeML event. The preferred
// origin and focal mechanism are used, falling back to the first of each. A
// moment tensor's derived origin takes precedence when it can be resolved.
// Depth is converted from metres to kilometres.
//
// Events that cannot be mapped are skipped and reported in a *PartialError
// returned alongside the mappings of the others.
func ParseQuakeML(r io.Reader) ([]map[string]any, error) {
	var doc quakeMLDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode QuakeML: %w", err)
	}

	origins := make(map[string]quakeMLOrigin)
	for _, ev := range doc.Events {
		for _, o := range ev.Origins {
			if o.PublicID != "" {
				origins[strings.TrimSpace(o.PublicID)] = o
			}
		}
	}

	out := make([]map[string]any, 0, len(doc.Events))
	var partial PartialError
	for i, ev := range doc.Events {
		m, err := eventMapping(ev, origins)
		if err != nil {
			label := strings.TrimSpace(ev.PublicID)
			if label == "" {
				label = fmt.Sprintf("#%d", i)
			}
			partial.Problems = append(partial.Problems, &domain.InvalidRecordError{
				Source: "event",
				Index:  i,
				Err:    fmt.Errorf("QuakeML event %s: %w", label, err),
			})
			continue
		}
		partial.Positions = append(partial.Positions, i)
		out = append(out, m)
	}
	if len(partial.Problems) > 0 {
		return out, &partial
	}
	return out, nil
}

func eventMapping(ev quakeMLEvent, origins map[string]quakeMLOrigin) (map[string]any, error) {
	if len(ev.Origins) == 0 {
		return nil, errNoOrigin
	}
	if len(ev.FocalMechanisms) == 0 {
		return nil, errNoFocalMechanism
	}

	origin := ev.Origins[0]
	if o, ok := origins[strings.TrimSpace(ev.PreferredOriginID)]; ok {
		origin = o
	}
	fm := ev.FocalMechanisms[0]
	for _, candidate := range ev.FocalMechanisms {
		if pref := strings.TrimSpace(ev.PreferredFocalMechanismID); pref != "" && candidate.PublicID == pref {
			fm = candidate
			break
		}
	}
	if fm.MomentTensor == nil || fm.MomentTensor.Tensor == nil {
		return nil, errNoMomentTensor
	}
	if o, ok := origins[strings.TrimSpace(fm.MomentTensor.DerivedOriginID)]; ok {
		origin = o
	}

	m := map[string]any{}
	if ev.PublicID != "" {
		m["public_id"] = strings.TrimSpace(ev.PublicID)
	}

	fields := []struct {
		name string
		q    *quakeMLQuantity
	}{
		{"latitude", origin.Latitude},
		{"longitude", origin.Longitude},
		{"origin_time", origin.Time},
		{"m_rr", fm.MomentTensor.Tensor.Mrr},
		{"m_tt", fm.MomentTensor.Tensor.Mtt},
		{"m_pp", fm.MomentTensor.Tensor.Mpp},
		{"m_rt", fm.MomentTensor.Tensor.Mrt},
		{"m_rp", fm.MomentTensor.Tensor.Mrp},
		{"m_tp", fm.MomentTensor.Tensor.Mtp},
	}
	for _, f := range fields {
		v, ok := f.q.text()
		if !ok {
			return nil, fmt.Errorf("missing %s", f.name)
		}
		m[f.name] = v
	}

	depth, ok := origin.Depth.text()
	if !ok {
		return nil, errors.New("missing depth")
	}
	depthInM, err := parseReal(depth)
	if err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	m["depth_in_km"] = depthInM / 1000

	if len(ev.Descriptions) > 0 {
		texts := make([]string, 0, len(ev.Descriptions))
		for _, d := range ev.Descriptions {
			texts = append(texts, strings.TrimSpace(d.Text))
		}
		m["description"] = strings.Join(texts, ", ")
	}
	return m, nil
}

func (q *quakeMLQuantity) text() (string, bool) {
	if q == nil || q.Value == nil {
		return "", false
	}
	v := strings.TrimSpace(*q.Value)
	return v, v != ""
}
