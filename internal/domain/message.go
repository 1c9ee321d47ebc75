package domain

import (
	"context"
	"encoding/json"
	"time"
)

// RawMessage is an unprocessed message from the request topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// GenerationRequest asks for one backend's input files. Events and Stations
// take any record input a session accepts: an object, an array of objects,
// or a QuakeML or StationXML document as a JSON string.
type GenerationRequest struct {
	ID            string          `json:"id,omitempty"`
	Backend       string          `json:"backend"`
	Configuration map[string]any  `json:"configuration,omitempty"`
	Events        json.RawMessage `json:"events,omitempty"`
	Stations      json.RawMessage `json:"stations,omitempty"`
	EventFilter   []string        `json:"event_filter,omitempty"`
	StationFilter []string        `json:"station_filter,omitempty"`
}

// Bundle is the outcome of one generation request. Files is empty and
// Error set when generation failed.
type Bundle struct {
	RequestID   string            `json:"request_id"`
	Backend     string            `json:"backend"`
	Outcome     string            `json:"outcome"`
	Files       map[string]string `json:"files,omitempty"`
	Error       string            `json:"error,omitempty"`
	Problems    []string          `json:"problems,omitempty"`
	Events      int               `json:"events"`
	Stations    int               `json:"stations"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Failed reports whether the bundle carries an error instead of files.
func (b Bundle) Failed() bool { return b.Error != "" }

// OutputMessage is the serialized form destined for the bundle topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
