// Package surrealdb provides the SurrealDB record store.
package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

const recordTable = "daily_record"

// recordRow is the stored shape of a daily record. Dates are kept as
// YYYY-MM-DD strings so range filters and ordering are lexical.
type recordRow struct {
	SystemTag      string  `json:"system_tag"`
	Date           string  `json:"date"`
	NAV            float64 `json:"nav"`
	PortfolioValue float64 `json:"portfolio_value"`
	CapitalInOut   float64 `json:"capital_in_out"`
	PnL            float64 `json:"pnl"`
	Drawdown       float64 `json:"drawdown"`
	Dividend       float64 `json:"dividend"`
}

func toRow(r models.DailyRecord) recordRow {
	return recordRow{
		SystemTag:      r.SystemTag,
		Date:           models.FormatDate(r.Date),
		NAV:            r.NAV,
		PortfolioValue: r.PortfolioValue,
		CapitalInOut:   r.CapitalInOut,
		PnL:            r.PnL,
		Drawdown:       r.Drawdown,
		Dividend:       r.Dividend,
	}
}

func (row recordRow) toRecord() (models.DailyRecord, error) {
	d, err := models.ParseDate(row.Date)
	if err != nil {
		return models.DailyRecord{}, err
	}
	return models.DailyRecord{
		SystemTag:      row.SystemTag,
		Date:           d,
		NAV:            row.NAV,
		PortfolioValue: row.PortfolioValue,
		CapitalInOut:   row.CapitalInOut,
		PnL:            row.PnL,
		Drawdown:       row.Drawdown,
		Dividend:       row.Dividend,
	}, nil
}

// Store reads daily records from SurrealDB.
type Store struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.RecordBackend = (*Store)(nil)

// Connect opens a SurrealDB connection, signs in, selects the namespace and
// database and makes sure the record table exists.
func Connect(ctx context.Context, logger *common.Logger, config common.SurrealDBConfig) (*Store, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	store, err := NewStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB record store initialized")
	return store, nil
}

// NewStore wraps an open connection. The record table is defined if missing
// since SurrealDB v3 errors on querying a table that does not exist.
func NewStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Store, error) {
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", recordTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", recordTable, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// ListRecords returns a tag's records on or after from, ascending by date.
func (s *Store) ListRecords(ctx context.Context, systemTag string, from time.Time) ([]models.DailyRecord, error) {
	sql := "SELECT * FROM daily_record WHERE system_tag = $tag AND date >= $from ORDER BY date ASC"
	vars := map[string]any{
		"tag":  systemTag,
		"from": models.FormatDate(from),
	}

	records, err := s.query(ctx, sql, vars)
	if err != nil {
		return nil, &models.StoreError{SystemTag: systemTag, Err: err}
	}
	return records, nil
}

// ScanAll returns every stored record.
func (s *Store) ScanAll(ctx context.Context) ([]models.DailyRecord, error) {
	records, err := s.query(ctx, "SELECT * FROM daily_record ORDER BY system_tag, date ASC", nil)
	if err != nil {
		return nil, &models.StoreError{SystemTag: "*", Err: err}
	}
	s.logger.Debug().Int("records", len(records)).Msg("SurrealDB scan complete")
	return records, nil
}

func (s *Store) query(ctx context.Context, sql string, vars map[string]any) ([]models.DailyRecord, error) {
	results, err := surrealdb.Query[[]recordRow](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("surrealdb query: %w", err)
	}

	var out []models.DailyRecord
	if results != nil && len(*results) > 0 {
		rows := (*results)[0].Result
		out = make([]models.DailyRecord, 0, len(rows))
		for _, row := range rows {
			r, err := row.toRecord()
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", row.SystemTag, err)
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// Upsert writes records keyed by (tag, date).
func (s *Store) Upsert(ctx context.Context, records []models.DailyRecord) error {
	sql := "UPSERT $rid CONTENT $data"
	for _, r := range records {
		if r.SystemTag == "" {
			return fmt.Errorf("record dated %s has no system tag", models.FormatDate(r.Date))
		}
		row := toRow(r)
		vars := map[string]any{
			"rid":  surrealmodels.NewRecordID(recordTable, row.SystemTag+"_"+row.Date),
			"data": row,
		}

		var lastErr error
		for attempt := 1; attempt <= 3; attempt++ {
			if _, lastErr = surrealdb.Query[[]recordRow](ctx, s.db, sql, vars); lastErr == nil {
				break
			}
		}
		if lastErr != nil {
			return fmt.Errorf("failed to save record %s/%s after retries: %w", row.SystemTag, row.Date, lastErr)
		}
	}
	s.logger.Debug().Int("records", len(records)).Msg("Records saved")
	return nil
}

// Close closes the SurrealDB connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close(context.Background())
	}
	return nil
}
