package records

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/domain"
)

// StationFilter keeps stations whose full "NETWORK.STATION" id matches any
// of its glob patterns. A nil or empty filter keeps everything.
type StationFilter struct {
	patterns []string
}

// NewStationFilter validates every pattern up front.
func NewStationFilter(patterns ...string) (*StationFilter, error) {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("station filter %q: %w", p, err)
		}
	}
	return &StationFilter{patterns: append([]string(nil), patterns...)}, nil
}

// Active reports whether the filter restricts anything.
func (f *StationFilter) Active() bool { return f != nil && len(f.patterns) > 0 }

// Patterns returns a copy of the patterns.
func (f *StationFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

// Match reports whether the station id is kept.
func (f *StationFilter) Match(id string) bool {
	if !f.Active() {
		return true
	}
	for _, p := range f.patterns {
		// Patterns are validated in the constructor.
		if ok, _ := path.Match(p, id); ok {
			return true
		}
	}
	return false
}

// EventFilter keeps events whose public id equals one of its ids, ignoring
// case. Once active, events without a public id are discarded.
type EventFilter struct {
	ids []string
}

func NewEventFilter(ids ...string) *EventFilter {
	return &EventFilter{ids: append([]string(nil), ids...)}
}

func (f *EventFilter) Active() bool { return f != nil && len(f.ids) > 0 }

// IDs returns a copy of the ids.
func (f *EventFilter) IDs() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.ids...)
}

// Match reports whether the event is kept.
func (f *EventFilter) Match(ev domain.Event) bool {
	if !f.Active() {
		return true
	}
	if ev.PublicID == "" {
		return false
	}
	for _, id := range f.ids {
		if strings.EqualFold(id, ev.PublicID) {
			return true
		}
	}
	return false
}

// ParseFilter decodes a filter list given as JSON text. A bare string that is
// not a JSON array is treated as a single entry.
func ParseFilter(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if !strings.HasPrefix(text, "[") {
		var single string
		if strings.HasPrefix(text, `"`) {
			if err := json.Unmarshal([]byte(text), &single); err != nil {
				return nil, fmt.Errorf("parse filter: %w", err)
			}
			return []string{single}, nil
		}
		return []string{text}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	return list, nil
}
