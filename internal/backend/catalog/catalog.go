// Package catalog assembles the registry of bundled solver backends.
package catalog

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/wfs-input-generator/internal/backend"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/ses3d"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/specfem"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/specfemepos"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/specfemglobe"
	"github.com/couchcryptid/wfs-input-generator/internal/backend/specfemrev"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *backend.Registry
)

// New returns a registry holding every bundled backend. A backend whose
// definition fails validation is logged by the registry and left out.
func New(logger *slog.Logger) *backend.Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := backend.NewRegistry(logger)
	_ = r.Register(ses3d.Name, ses3d.Definition(logger))
	_ = r.Register(specfem.Name, specfem.Definition())
	_ = r.Register(specfemrev.Name, specfemrev.Definition())
	_ = r.Register(specfemglobe.Name, specfemglobe.Definition())
	_ = r.Register(specfemepos.Name, specfemepos.Definition())
	return r
}

// Default returns the process-wide registry, built on first use with the
// default logger.
func Default() *backend.Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(slog.Default())
	})
	return defaultRegistry
}
