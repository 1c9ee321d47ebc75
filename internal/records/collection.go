package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/domain"
)

// AddResult counts the outcome of one add call.
type AddResult struct {
	Added      int
	Duplicates int
	Rejected   int
}

// AddError aggregates every record rejected by one add call. Valid records
// from the same call are kept.
type AddError struct {
	Source   string
	Problems []error
}

func (e *AddError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d record(s) rejected", e.Source, len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}

func (e *AddError) Unwrap() []error { return e.Problems }

// Collection is the accumulated superset of events and stations. It is not
// safe for concurrent use.
type Collection struct {
	events    []domain.Event
	eventKeys map[string]struct{}
	stations  map[string]domain.Station
}

func NewCollection() *Collection {
	return &Collection{
		eventKeys: make(map[string]struct{}),
		stations:  make(map[string]domain.Station),
	}
}

// AddEvents decodes and validates input, keeping each event whose key is not
// yet present. source labels the input in errors.
func (c *Collection) AddEvents(input any, source string) (AddResult, error) {
	return c.add(input, labelOr(source, "events"), func(m map[string]any) (bool, error) {
		ev, err := domain.EventFromMap(m)
		if err != nil {
			return false, err
		}
		key := ev.Key()
		if _, dup := c.eventKeys[key]; dup {
			return false, nil
		}
		c.eventKeys[key] = struct{}{}
		c.events = append(c.events, ev)
		return true, nil
	})
}

// AddStations decodes and validates input, keeping each station whose id is
// not yet present.
func (c *Collection) AddStations(input any, source string) (AddResult, error) {
	return c.add(input, labelOr(source, "stations"), func(m map[string]any) (bool, error) {
		st, err := domain.StationFromMap(m)
		if err != nil {
			return false, err
		}
		if _, dup := c.stations[st.ID]; dup {
			return false, nil
		}
		c.stations[st.ID] = st
		return true, nil
	})
}

func (c *Collection) add(input any, source string, keep func(map[string]any) (bool, error)) (AddResult, error) {
	var res AddResult
	items, err := Decode(input)
	if err != nil {
		return res, &AddError{Source: source, Problems: []error{
			&domain.InvalidRecordError{Source: source, Index: -1, Err: err},
		}}
	}

	var problems []error
	for i, m := range items {
		added, err := keep(m)
		if err != nil {
			res.Rejected++
			problems = append(problems, relabel(err, source, i))
			continue
		}
		if added {
			res.Added++
		} else {
			res.Duplicates++
		}
	}
	if len(problems) > 0 {
		return res, &AddError{Source: source, Problems: problems}
	}
	return res, nil
}

func relabel(err error, source string, index int) error {
	var ire *domain.InvalidRecordError
	if errors.As(err, &ire) {
		out := *ire
		out.Source = source
		out.Index = index
		return &out
	}
	return &domain.InvalidRecordError{Source: source, Index: index, Err: err}
}

func labelOr(source, fallback string) string {
	if source == "" {
		return fallback
	}
	return source
}

// EventCount returns the number of accumulated events.
func (c *Collection) EventCount() int { return len(c.events) }

// StationCount returns the number of accumulated stations.
func (c *Collection) StationCount() int { return len(c.stations) }

// Events returns copies of the events kept by filter, in insertion order.
func (c *Collection) Events(filter *EventFilter) []domain.Event {
	out := make([]domain.Event, 0, len(c.events))
	for _, ev := range c.events {
		if !filter.Match(ev) {
			continue
		}
		if ev.Description != nil {
			d := *ev.Description
			ev.Description = &d
		}
		out = append(out, ev)
	}
	return out
}

// Stations returns copies of the stations kept by filter, sorted by id.
func (c *Collection) Stations(filter *StationFilter) []domain.Station {
	out := make([]domain.Station, 0, len(c.stations))
	for id, st := range c.stations {
		if filter.Match(id) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
