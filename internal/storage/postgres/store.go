// Package postgres provides the Postgres record store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS daily_records (
	system_tag      TEXT             NOT NULL,
	record_date     DATE             NOT NULL,
	nav             DOUBLE PRECISION NOT NULL,
	portfolio_value DOUBLE PRECISION NOT NULL DEFAULT 0,
	capital_in_out  DOUBLE PRECISION NOT NULL DEFAULT 0,
	pnl             DOUBLE PRECISION NOT NULL DEFAULT 0,
	drawdown        DOUBLE PRECISION NOT NULL DEFAULT 0,
	dividend        DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (system_tag, record_date)
)`

const selectColumns = `system_tag, record_date, nav, portfolio_value, capital_in_out, pnl, drawdown, dividend`

const upsertSQL = `INSERT INTO daily_records (` + selectColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (system_tag, record_date) DO UPDATE SET
		nav = EXCLUDED.nav,
		portfolio_value = EXCLUDED.portfolio_value,
		capital_in_out = EXCLUDED.capital_in_out,
		pnl = EXCLUDED.pnl,
		drawdown = EXCLUDED.drawdown,
		dividend = EXCLUDED.dividend`

// Store reads daily records from a pooled Postgres connection.
type Store struct {
	pool   *pgxpool.Pool
	logger *common.Logger
}

var _ interfaces.RecordBackend = (*Store)(nil)

// Connect opens a connection pool and makes sure the records table exists.
func Connect(ctx context.Context, logger *common.Logger, config common.PostgresConfig) (*Store, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	store, err := NewStore(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Msg("Postgres record store initialized")
	return store, nil
}

// NewStore wraps an open pool and creates the records table if missing.
func NewStore(ctx context.Context, pool *pgxpool.Pool, logger *common.Logger) (*Store, error) {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create daily_records table: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// ListRecords returns a tag's records on or after from, ascending by date.
func (s *Store) ListRecords(ctx context.Context, systemTag string, from time.Time) ([]models.DailyRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if from.IsZero() {
		rows, err = s.pool.Query(ctx,
			`SELECT `+selectColumns+` FROM daily_records WHERE system_tag = $1 ORDER BY record_date ASC`,
			systemTag)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+selectColumns+` FROM daily_records WHERE system_tag = $1 AND record_date >= $2 ORDER BY record_date ASC`,
			systemTag, models.Day(from))
	}
	if err != nil {
		return nil, &models.StoreError{SystemTag: systemTag, Err: fmt.Errorf("postgres query: %w", err)}
	}

	records, err := collect(rows)
	if err != nil {
		return nil, &models.StoreError{SystemTag: systemTag, Err: err}
	}
	return records, nil
}

// ScanAll returns every stored record.
func (s *Store) ScanAll(ctx context.Context) ([]models.DailyRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM daily_records ORDER BY system_tag, record_date ASC`)
	if err != nil {
		return nil, &models.StoreError{SystemTag: "*", Err: fmt.Errorf("postgres scan: %w", err)}
	}

	records, err := collect(rows)
	if err != nil {
		return nil, &models.StoreError{SystemTag: "*", Err: err}
	}
	s.logger.Debug().Int("records", len(records)).Msg("Postgres scan complete")
	return records, nil
}

func collect(rows pgx.Rows) ([]models.DailyRecord, error) {
	defer rows.Close()

	var records []models.DailyRecord
	for rows.Next() {
		var r models.DailyRecord
		if err := rows.Scan(&r.SystemTag, &r.Date, &r.NAV, &r.PortfolioValue,
			&r.CapitalInOut, &r.PnL, &r.Drawdown, &r.Dividend); err != nil {
			return nil, fmt.Errorf("postgres row scan: %w", err)
		}
		r.Date = models.Day(r.Date)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres rows: %w", err)
	}
	return records, nil
}

// Upsert writes records keyed by (tag, date) in a single batch.
func (s *Store) Upsert(ctx context.Context, records []models.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		if r.SystemTag == "" {
			return fmt.Errorf("record dated %s has no system tag", models.FormatDate(r.Date))
		}
		batch.Queue(upsertSQL, r.SystemTag, models.Day(r.Date), r.NAV, r.PortfolioValue,
			r.CapitalInOut, r.PnL, r.Drawdown, r.Dividend)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, r := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to save record %s/%s: %w", r.SystemTag, models.FormatDate(r.Date), err)
		}
	}
	s.logger.Debug().Int("records", len(records)).Msg("Records saved")
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
