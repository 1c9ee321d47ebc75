package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/generator"
)

// Header keys set on bundle messages.
const (
	HeaderBackend     = "backend"
	HeaderStatus      = "status"
	HeaderGeneratedAt = "generated_at"
)

// RequestTransformer decodes generation requests and answers them through
// a generator.Service.
type RequestTransformer struct {
	service *generator.Service
}

func NewTransformer(service *generator.Service) *RequestTransformer {
	return &RequestTransformer{service: service}
}

// Transform fails only when the message is not a request. Generation
// failures become bundles with an error.
func (t *RequestTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	req, err := DecodeRequest(raw)
	if err != nil {
		return domain.OutputMessage{}, err
	}
	return EncodeBundle(t.service.Generate(req))
}

// DecodeRequest parses a request message. A request without an id takes
// the message key.
func DecodeRequest(raw domain.RawMessage) (domain.GenerationRequest, error) {
	var req domain.GenerationRequest
	dec := json.NewDecoder(bytes.NewReader(raw.Value))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode generation request: %w", err)
	}
	if req.Backend == "" {
		return req, fmt.Errorf("decode generation request: backend is missing")
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return req, nil
}

// EncodeBundle serializes a bundle keyed by its request id.
func EncodeBundle(b domain.Bundle) (domain.OutputMessage, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("serialize bundle: %w", err)
	}
	status := "ok"
	if b.Failed() {
		status = "failed"
	}
	return domain.OutputMessage{
		Key:   []byte(b.RequestID),
		Value: data,
		Headers: map[string]string{
			HeaderBackend:     b.Backend,
			HeaderStatus:      status,
			HeaderGeneratedAt: b.GeneratedAt.Format(time.RFC3339),
		},
	}, nil
}
