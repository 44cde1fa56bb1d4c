// Package badger provides the embedded BadgerHold record store.
package badger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

var _ interfaces.RecordBackend = (*Store)(nil)

// NewStore creates a new BadgerHold store at the given directory path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// recordKey orders records by tag, then date.
func recordKey(tag string, date time.Time) string {
	return tag + "\x00" + models.FormatDate(date)
}

// ListRecords returns a tag's records on or after from, ascending by date.
func (s *Store) ListRecords(_ context.Context, systemTag string, from time.Time) ([]models.DailyRecord, error) {
	query := badgerhold.Where("SystemTag").Eq(systemTag)
	if !from.IsZero() {
		query = query.And("Date").Ge(models.Day(from))
	}

	var records []models.DailyRecord
	if err := s.db.Find(&records, query.SortBy("Date")); err != nil {
		return nil, &models.StoreError{SystemTag: systemTag, Err: fmt.Errorf("badger find: %w", err)}
	}
	return records, nil
}

// ScanAll returns every stored record.
func (s *Store) ScanAll(_ context.Context) ([]models.DailyRecord, error) {
	var records []models.DailyRecord
	if err := s.db.Find(&records, nil); err != nil {
		return nil, &models.StoreError{SystemTag: "*", Err: fmt.Errorf("badger scan: %w", err)}
	}
	s.logger.Debug().Int("records", len(records)).Msg("Badger scan complete")
	return records, nil
}

// Upsert writes records keyed by (tag, date).
func (s *Store) Upsert(_ context.Context, records []models.DailyRecord) error {
	for _, r := range records {
		if r.SystemTag == "" {
			return fmt.Errorf("record dated %s has no system tag", models.FormatDate(r.Date))
		}
		r.Date = models.Day(r.Date)
		r.Baseline = false
		if err := s.db.Upsert(recordKey(r.SystemTag, r.Date), r); err != nil {
			return fmt.Errorf("failed to save record %s/%s: %w", r.SystemTag, models.FormatDate(r.Date), err)
		}
	}
	s.logger.Debug().Int("records", len(records)).Msg("Records saved")
	return nil
}

// DB returns the underlying badgerhold store.
func (s *Store) DB() *badgerhold.Store {
	return s.db
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
