// Package recordcache serves record reads from an in-memory snapshot of a
// backend, refreshed on demand.
package recordcache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

// Store decorates a RecordBackend. The first read loads every record with a
// single ScanAll; later reads are answered from memory until Invalidate.
type Store struct {
	backend interfaces.RecordBackend
	logger  *common.Logger

	mu       sync.Mutex
	byTag    map[string][]models.DailyRecord
	loadedAt time.Time
}

var (
	_ interfaces.RecordBackend    = (*Store)(nil)
	_ interfaces.CacheInvalidator = (*Store)(nil)
)

// New wraps backend with a lazily loaded snapshot.
func New(backend interfaces.RecordBackend, logger *common.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// ListRecords returns a tag's records on or after from, ascending by date.
// The returned slice is a copy.
func (s *Store) ListRecords(ctx context.Context, systemTag string, from time.Time) ([]models.DailyRecord, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		var se *models.StoreError
		if errors.As(err, &se) {
			err = se.Err
		}
		return nil, &models.StoreError{SystemTag: systemTag, Err: err}
	}

	cached := snapshot[systemTag]
	start := 0
	if !from.IsZero() {
		cutoff := models.Day(from)
		start = sort.Search(len(cached), func(i int) bool {
			return !cached[i].Date.Before(cutoff)
		})
	}

	out := make([]models.DailyRecord, len(cached)-start)
	copy(out, cached[start:])
	return out, nil
}

// ScanAll returns every cached record.
func (s *Store) ScanAll(ctx context.Context) ([]models.DailyRecord, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var out []models.DailyRecord
	for _, records := range snapshot {
		out = append(out, records...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SystemTag != out[j].SystemTag {
			return out[i].SystemTag < out[j].SystemTag
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Upsert writes through to the backend and drops the snapshot.
func (s *Store) Upsert(ctx context.Context, records []models.DailyRecord) error {
	if err := s.backend.Upsert(ctx, records); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// Invalidate drops the snapshot; the next read reloads from the backend.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byTag != nil {
		s.logger.Info().Time("loaded_at", s.loadedAt).Msg("Record cache invalidated")
	}
	s.byTag = nil
	s.loadedAt = time.Time{}
}

// LoadedAt reports when the current snapshot was taken, or zero if none.
func (s *Store) LoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt
}

// Close closes the backend.
func (s *Store) Close() error {
	s.Invalidate()
	return s.backend.Close()
}

// snapshot loads the backend on first use. The lock is held across the scan
// so concurrent callers share one load.
func (s *Store) snapshot(ctx context.Context) (map[string][]models.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byTag != nil {
		return s.byTag, nil
	}

	start := time.Now()
	records, err := s.backend.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	byTag := make(map[string][]models.DailyRecord)
	for _, r := range records {
		r.Date = models.Day(r.Date)
		byTag[r.SystemTag] = append(byTag[r.SystemTag], r)
	}
	for tag := range byTag {
		recs := byTag[tag]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Date.Before(recs[j].Date)
		})
	}

	s.byTag = byTag
	s.loadedAt = time.Now()
	s.logger.Info().
		Int("records", len(records)).
		Int("tags", len(byTag)).
		Dur("elapsed", time.Since(start)).
		Msg("Record cache loaded")
	return byTag, nil
}
