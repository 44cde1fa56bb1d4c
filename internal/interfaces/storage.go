// Package interfaces defines service contracts for navdash
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/navdash/internal/models"
)

// RecordStore is the read-only view of the time-series record store.
type RecordStore interface {
	// ListRecords returns the records for systemTag in ascending date order,
	// restricted to date >= from when from is non-zero. A tag with no
	// records yields an empty slice and a nil error; a failing store yields
	// an error matching models.ErrStoreUnavailable.
	ListRecords(ctx context.Context, systemTag string, from time.Time) ([]models.DailyRecord, error)
}

// RecordBackend is a concrete record store implementation.
type RecordBackend interface {
	RecordStore

	// ScanAll returns every record held by the backend, used to warm the
	// in-process cache with a single read.
	ScanAll(ctx context.Context) ([]models.DailyRecord, error)

	// Upsert writes records, replacing any with the same (tag, date).
	// Ingestion lives outside navdash; this exists for fixtures and tooling.
	Upsert(ctx context.Context, records []models.DailyRecord) error

	// Close releases the backend's resources
	Close() error
}

// CacheInvalidator is implemented by stores that hold an in-process snapshot.
type CacheInvalidator interface {
	Invalidate()
}
