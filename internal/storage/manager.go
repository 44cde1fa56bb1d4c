package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/storage/recordcache"
)

// Manager owns the record backend and, when enabled, the cache in front of it.
type Manager struct {
	backend interfaces.RecordBackend
	cache   *recordcache.Store
	logger  *common.Logger
}

var _ interfaces.CacheInvalidator = (*Manager)(nil)

// NewManager opens the configured backend and wraps it with the record cache
// when config.Cache.Enabled is set.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	backend, err := NewRecordBackend(ctx, logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s record store: %w", config.Storage.Backend, err)
	}

	m := NewManagerFromBackend(backend, config.Cache.Enabled, logger)

	logger.Info().
		Str("backend", config.Storage.Backend).
		Str("address", config.StorageAddress()).
		Bool("cache", config.Cache.Enabled).
		Msg("Storage manager initialized")
	return m, nil
}

// NewManagerFromBackend wraps an already open backend.
func NewManagerFromBackend(backend interfaces.RecordBackend, cached bool, logger *common.Logger) *Manager {
	m := &Manager{backend: backend, logger: logger}
	if cached {
		m.cache = recordcache.New(backend, logger)
	}
	return m
}

// Records returns the store the services read from: the cache when enabled,
// otherwise the backend itself.
func (m *Manager) Records() interfaces.RecordBackend {
	if m.cache != nil {
		return m.cache
	}
	return m.backend
}

// Invalidate drops the cached snapshot. It is a no-op when caching is off.
func (m *Manager) Invalidate() {
	if m.cache != nil {
		m.cache.Invalidate()
	}
}

// Cached reports whether reads go through the record cache.
func (m *Manager) Cached() bool {
	return m.cache != nil
}

// Close closes the backend.
func (m *Manager) Close() error {
	if m.cache != nil {
		return m.cache.Close()
	}
	return m.backend.Close()
}
