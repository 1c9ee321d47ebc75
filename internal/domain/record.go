package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wfs-input-generator/internal/coerce"
	"github.com/spf13/cast"
)

// Record field names shared by every input format.
const (
	FieldLatitude      = "latitude"
	FieldLongitude     = "longitude"
	FieldDepthInKm     = "depth_in_km"
	FieldOriginTime    = "origin_time"
	FieldDescription   = "description"
	FieldPublicID      = "public_id"
	FieldID            = "id"
	FieldElevationInM  = "elevation_in_m"
	FieldLocalDepthInM = "local_depth_in_m"
)

var tensorFields = [6]string{"m_rr", "m_tt", "m_pp", "m_rt", "m_rp", "m_tp"}

// InvalidRecordError reports an event or station that failed validation.
// Index is the position within the submitted batch, or -1 when unknown.
type InvalidRecordError struct {
	Source string
	Index  int
	Field  string
	Err    error
}

func (e *InvalidRecordError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(e.Source)
	if e.Index >= 0 {
		fmt.Fprintf(&b, " #%d", e.Index)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *InvalidRecordError) Unwrap() error { return e.Err }

var (
	errMissing    = errors.New("field is missing")
	errOutOfRange = errors.New("value out of range")
)

// EventFromMap validates and normalizes a loosely typed event record. Keys not
// belonging to the event schema are dropped.
func EventFromMap(m map[string]any) (Event, error) {
	var (
		ev  Event
		err error
	)
	fail := func(field string, cause error) (Event, error) {
		return Event{}, &InvalidRecordError{Source: "event", Index: -1, Field: field, Err: cause}
	}

	if ev.Latitude, err = realField(m, FieldLatitude, -90, 90); err != nil {
		return fail(FieldLatitude, err)
	}
	if ev.Longitude, err = realField(m, FieldLongitude, -180, 180); err != nil {
		return fail(FieldLongitude, err)
	}
	if ev.DepthInKm, err = realField(m, FieldDepthInKm, 0, math.Inf(1)); err != nil {
		return fail(FieldDepthInKm, err)
	}
	if ev.OriginTime, err = timeField(m, FieldOriginTime); err != nil {
		return fail(FieldOriginTime, err)
	}

	components := [6]*float64{&ev.Mrr, &ev.Mtt, &ev.Mpp, &ev.Mrt, &ev.Mrp, &ev.Mtp}
	for i, name := range tensorFields {
		v, cerr := realField(m, name, math.Inf(-1), math.Inf(1))
		if cerr != nil {
			return fail(name, cerr)
		}
		*components[i] = v
	}

	if raw, ok := m[FieldDescription]; ok && raw != nil {
		s, serr := coerce.String.Apply(FieldDescription, raw)
		if serr != nil {
			return fail(FieldDescription, serr)
		}
		desc := s.(string)
		ev.Description = &desc
	}
	if raw, ok := m[FieldPublicID]; ok && raw != nil {
		s, serr := coerce.String.Apply(FieldPublicID, raw)
		if serr != nil {
			return fail(FieldPublicID, serr)
		}
		ev.PublicID = strings.TrimSpace(s.(string))
	}
	return ev, nil
}

// StationFromMap validates and normalizes a loosely typed station record.
func StationFromMap(m map[string]any) (Station, error) {
	var (
		st  Station
		err error
	)
	fail := func(field string, cause error) (Station, error) {
		return Station{}, &InvalidRecordError{Source: "station", Index: -1, Field: field, Err: cause}
	}

	raw, ok := m[FieldID]
	if !ok || raw == nil {
		return fail(FieldID, errMissing)
	}
	id, err := coerce.String.Apply(FieldID, raw)
	if err != nil {
		return fail(FieldID, err)
	}
	st.ID = strings.TrimSpace(id.(string))
	network, code, found := strings.Cut(st.ID, ".")
	if !found || network == "" || code == "" {
		return fail(FieldID, fmt.Errorf("%q is not of the form NETWORK.STATION", st.ID))
	}

	if st.Latitude, err = realField(m, FieldLatitude, -90, 90); err != nil {
		return fail(FieldLatitude, err)
	}
	if st.Longitude, err = realField(m, FieldLongitude, -180, 180); err != nil {
		return fail(FieldLongitude, err)
	}
	if st.ElevationInM, err = realField(m, FieldElevationInM, math.Inf(-1), math.Inf(1)); err != nil {
		return fail(FieldElevationInM, err)
	}
	if v, present := m[FieldLocalDepthInM]; present && v != nil {
		if st.LocalDepthInM, err = realField(m, FieldLocalDepthInM, math.Inf(-1), math.Inf(1)); err != nil {
			return fail(FieldLocalDepthInM, err)
		}
	}
	return st, nil
}

func realField(m map[string]any, name string, lo, hi float64) (float64, error) {
	raw, ok := m[name]
	if !ok || raw == nil {
		return 0, errMissing
	}
	if _, isBool := raw.(bool); isBool {
		return 0, fmt.Errorf("cannot use boolean %v as a real", raw)
	}
	v, err := coerce.Float.Apply(name, raw)
	if err != nil {
		return 0, err
	}
	f := v.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not finite", f)
	}
	if f < lo || f > hi {
		return 0, fmt.Errorf("%w: %v not in [%v, %v]", errOutOfRange, f, lo, hi)
	}
	return f, nil
}

// timeField accepts time.Time, timestamp text, or seconds since the Unix epoch.
// The result is UTC truncated to microseconds.
func timeField(m map[string]any, name string) (time.Time, error) {
	raw, ok := m[name]
	if !ok || raw == nil {
		return time.Time{}, errMissing
	}
	var t time.Time
	switch v := raw.(type) {
	case float64:
		sec, frac := math.Modf(v)
		t = time.Unix(int64(sec), int64(math.Round(frac*1e6))*int64(time.Microsecond))
	case string:
		parsed, err := cast.ToTimeE(strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
	default:
		parsed, err := cast.ToTimeE(raw)
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
	}
	return t.UTC().Truncate(time.Microsecond), nil
}

// Fingerprint returns a deterministic identifier over every normalized field
// except the public id.
func (e Event) Fingerprint() string {
	desc := "-"
	if e.Description != nil {
		desc = strconv.Quote(*e.Description)
	}
	input := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%s|%s",
		formatReal(e.Latitude), formatReal(e.Longitude), formatReal(e.DepthInKm),
		e.OriginTime.UTC().Format(time.RFC3339Nano),
		formatReal(e.Mrr), formatReal(e.Mtt), formatReal(e.Mpp),
		formatReal(e.Mrt), formatReal(e.Mrp), formatReal(e.Mtp),
		desc)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16])
}

// Key identifies the event for deduplication: the public id when present,
// otherwise the fingerprint.
func (e Event) Key() string {
	if e.PublicID != "" {
		return "id:" + e.PublicID
	}
	return "fp:" + e.Fingerprint()
}

// Anonymous returns a copy of the event without its public id.
func (e Event) Anonymous() Event {
	e.PublicID = ""
	if e.Description != nil {
		d := *e.Description
		e.Description = &d
	}
	return e
}

func formatReal(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
