// Package generator is the entry point for producing solver input files. A
// Session accumulates configuration overrides, events, stations and filters,
// and renders them through a named backend on Write.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/records"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/couchcryptid/wfs-input-generator/internal/schema"
	"github.com/couchcryptid/wfs-input-generator/internal/source"
)

// Session is not safe for concurrent use. Filters and configuration are
// only evaluated when Write runs, so they may be set in any order.
type Session struct {
	registry      *backend.Registry
	logger        *slog.Logger
	collection    *records.Collection
	overrides     *resolver.Overrides
	eventFilter   *records.EventFilter
	stationFilter *records.StationFilter
}

// NewSession returns an empty session rendering through registry.
func NewSession(registry *backend.Registry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		registry:   registry,
		logger:     logger,
		collection: records.NewCollection(),
		overrides:  resolver.NewOverrides(),
	}
}

// AddConfiguration merges configuration values given as a mapping or as a
// JSON or YAML document.
func (s *Session) AddConfiguration(config any) error {
	var doc []byte
	switch c := config.(type) {
	case string:
		doc = []byte(c)
	case []byte:
		doc = c
	default:
		return s.overrides.Add(config)
	}
	if resolver.IsYAML(doc) {
		return s.overrides.MergeYAML(doc)
	}
	return s.overrides.MergeJSON(doc)
}

// AddConfigurationFile merges a JSON or YAML configuration file.
func (s *Session) AddConfigurationFile(path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read configuration: %w", err)
	}
	if err := s.AddConfiguration(doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Set assigns one configuration value.
func (s *Session) Set(name string, value any) {
	s.overrides.Set(name, value)
}

// Configuration returns a copy of the pending configuration values.
func (s *Session) Configuration() map[string]any {
	return s.overrides.Values()
}

// AddEvents adds event records. input is a mapping, a list of mappings, or
// a JSON or QuakeML document. Rejected records are reported in a
// *records.AddError; the valid ones are kept.
func (s *Session) AddEvents(input any, label string) (records.AddResult, error) {
	input, err := parseDocument(input, source.ParseEvents)
	var partial *source.PartialError
	if err != nil && !errors.As(err, &partial) {
		return records.AddResult{}, unreadable(labelOr(label, "events"), err)
	}
	return s.addEvents(input, label, partial)
}

// addEvents keeps the events that could be read. Entries a document parser
// had to skip are folded into the result so their indices refer to the
// document.
func (s *Session) addEvents(input any, label string, partial *source.PartialError) (records.AddResult, error) {
	res, err := s.collection.AddEvents(input, label)
	if partial != nil {
		res, err = partial.Merge(res, err, labelOr(label, "events"))
	}
	s.logAdd("events", label, res, err)
	return res, err
}

// AddStations adds station records. input is a mapping, a list of mappings,
// or a JSON or StationXML document.
func (s *Session) AddStations(input any, label string) (records.AddResult, error) {
	input, err := parseDocument(input, source.ParseStations)
	if err != nil {
		return records.AddResult{}, unreadable(labelOr(label, "stations"), err)
	}
	res, err := s.collection.AddStations(input, label)
	s.logAdd("stations", label, res, err)
	return res, err
}

// AddEventFile reads events from a JSON or QuakeML file.
func (s *Session) AddEventFile(path string) (records.AddResult, error) {
	maps, err := source.LoadEvents(path)
	var partial *source.PartialError
	if err != nil && !errors.As(err, &partial) {
		return records.AddResult{}, unreadable(path, err)
	}
	return s.addEvents(maps, path, partial)
}

// AddStationFile reads stations from a JSON or StationXML file.
func (s *Session) AddStationFile(path string) (records.AddResult, error) {
	maps, err := source.LoadStations(path)
	if err != nil {
		return records.AddResult{}, unreadable(path, err)
	}
	return s.AddStations(maps, path)
}

func (s *Session) logAdd(kind, label string, res records.AddResult, err error) {
	attrs := []any{
		"kind", kind,
		"source", labelOr(label, kind),
		"added", res.Added,
		"duplicates", res.Duplicates,
		"rejected", res.Rejected,
	}
	if err != nil {
		s.logger.Warn("records rejected", append(attrs, "error", err)...)
		return
	}
	s.logger.Debug("records added", attrs...)
}

// SetEventFilter keeps only events whose public id is listed. No ids
// clears the filter.
func (s *Session) SetEventFilter(ids ...string) {
	s.eventFilter = records.NewEventFilter(ids...)
}

// SetStationFilter keeps only stations matching one of the glob patterns.
// No patterns clears the filter.
func (s *Session) SetStationFilter(patterns ...string) error {
	f, err := records.NewStationFilter(patterns...)
	if err != nil {
		return err
	}
	s.stationFilter = f
	return nil
}

// SetEventFilterJSON sets the event filter from a JSON list or a single id.
func (s *Session) SetEventFilterJSON(text string) error {
	ids, err := records.ParseFilter(text)
	if err != nil {
		return fmt.Errorf("event filter: %w", err)
	}
	s.SetEventFilter(ids...)
	return nil
}

// SetStationFilterJSON sets the station filter from a JSON list or a single
// pattern.
func (s *Session) SetStationFilterJSON(text string) error {
	patterns, err := records.ParseFilter(text)
	if err != nil {
		return fmt.Errorf("station filter: %w", err)
	}
	return s.SetStationFilter(patterns...)
}

// EventCount and StationCount report the unfiltered collection sizes.
func (s *Session) EventCount() int { return s.collection.EventCount() }

func (s *Session) StationCount() int { return s.collection.StationCount() }

// Backends lists the available backend names.
func (s *Session) Backends() []string { return s.registry.List() }

// ConfigParams returns the parameter schema of a backend.
func (s *Session) ConfigParams(backendName string) (*schema.Schema, error) {
	return s.registry.Schema(backendName)
}

// Write renders the accumulated records through the named backend. With an
// empty outputDir the files are returned. Otherwise outputDir must already
// exist; the files are written into it, replacing any of the same name, and
// the returned map is nil. A failed call leaves the session unchanged.
func (s *Session) Write(backendName, outputDir string) (map[string]string, error) {
	files, err := s.Render(backendName)
	if err != nil {
		return nil, err
	}
	if outputDir == "" {
		return files, nil
	}
	if err := writeFiles(outputDir, files); err != nil {
		return nil, err
	}
	s.logger.Info("input files written", "backend", backendName, "dir", outputDir, "files", len(files))
	return nil, nil
}

// Render resolves the configuration, applies the filters and renders the
// files in memory.
func (s *Session) Render(backendName string) (map[string]string, error) {
	b, err := s.registry.Get(backendName)
	if err != nil {
		return nil, err
	}
	cfg, err := resolver.Resolve(backendName, b.Schema(), s.overrides.Values())
	if err != nil {
		return nil, err
	}

	events := s.collection.Events(s.eventFilter)
	for i := range events {
		events[i] = events[i].Anonymous()
	}
	stations := s.collection.Stations(s.stationFilter)

	files, err := b.Render(cfg, events, stations)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("input files rendered",
		"backend", backendName,
		"events", len(events),
		"stations", len(stations),
		"files", len(files),
	)
	return files, nil
}

var (
	errNotDirectory = errors.New("output path is not a directory")
	errFileName     = errors.New("file name would leave the output directory")
)

func writeFiles(dir string, files map[string]string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", errNotDirectory, dir)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: %q", errFileName, name)
		}
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(files[name]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// parseDocument turns JSON or XML text into mappings. Other inputs pass
// through for the collection to decode.
func parseDocument(input any, parse func([]byte) ([]map[string]any, error)) (any, error) {
	switch v := input.(type) {
	case string:
		return parse([]byte(v))
	case []byte:
		return parse(v)
	default:
		return input, nil
	}
}

func unreadable(label string, err error) error {
	return &records.AddError{Source: label, Problems: []error{
		&domain.InvalidRecordError{Source: label, Index: -1, Err: err},
	}}
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
