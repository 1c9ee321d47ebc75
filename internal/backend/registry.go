// Package backend holds the table of solver backends. Each backend declares
// its parameter schema and a render function producing the solver's input
// files.
package backend

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wfs-input-generator/internal/domain"
	"github.com/couchcryptid/wfs-input-generator/internal/resolver"
	"github.com/couchcryptid/wfs-input-generator/internal/schema"
)

// RenderFunc turns a resolved configuration and the filtered records into a
// mapping of file name to file content.
type RenderFunc func(cfg *resolver.Config, events []domain.Event, stations []domain.Station) (map[string]string, error)

// Definition is what a backend package supplies at registration.
type Definition struct {
	Description string
	Required    map[string]schema.Required
	Optional    map[string]schema.Optional
	Render      RenderFunc
}

// Backend is a registered, validated definition.
type Backend struct {
	name        string
	description string
	schema      *schema.Schema
	render      RenderFunc
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Description() string { return b.description }

func (b *Backend) Schema() *schema.Schema { return b.schema }

// Render calls the backend's render function. Failures come back as
// *RenderError.
func (b *Backend) Render(cfg *resolver.Config, events []domain.Event, stations []domain.Station) (files map[string]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			files, err = nil, &RenderError{Backend: b.name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	files, err = b.render(cfg, events, stations)
	if err != nil {
		return nil, &RenderError{Backend: b.name, Err: err}
	}
	return files, nil
}

// Registry maps backend names to backends. It is populated at startup and
// read-only afterwards; concurrent reads are safe once registration is done.
type Registry struct {
	logger   *slog.Logger
	order    []string
	backends map[string]*Backend
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger, backends: make(map[string]*Backend)}
}

// Register validates def and adds it under name. A malformed definition is
// logged and left out; other backends are unaffected.
func (r *Registry) Register(name string, def Definition) error {
	if err := r.register(name, def); err != nil {
		r.logger.Error("backend omitted", "backend", name, "error", err)
		return err
	}
	r.logger.Debug("backend registered", "backend", name)
	return nil
}

func (r *Registry) register(name string, def Definition) error {
	if name == "" {
		return errors.New("backend name is empty")
	}
	if _, dup := r.backends[name]; dup {
		return fmt.Errorf("backend %q is already registered", name)
	}
	if def.Render == nil {
		return fmt.Errorf("backend %q has no render function", name)
	}
	s, err := schema.New(def.Required, def.Optional)
	if err != nil {
		return fmt.Errorf("backend %q: %w", name, err)
	}
	r.backends[name] = &Backend{name: name, description: def.Description, schema: s, render: def.Render}
	r.order = append(r.order, name)
	return nil
}

// List returns the backend names in registration order.
func (r *Registry) List() []string {
	return append([]string(nil), r.order...)
}

// Get returns the named backend or *UnknownBackendError.
func (r *Registry) Get(name string) (*Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, &UnknownBackendError{Name: name, Available: r.List()}
	}
	return b, nil
}

// Schema returns the parameter schema of the named backend.
func (r *Registry) Schema(name string) (*schema.Schema, error) {
	b, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return b.schema, nil
}
