package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/storage"
)

// warmCache loads the record cache on startup so the first request is fast.
func warmCache(ctx context.Context, m *storage.Manager, logger *common.Logger) {
	if os.Getenv("NAVDASH_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via NAVDASH_WARM_CACHE=off")
		return
	}
	if !m.Cached() {
		logger.Debug().Msg("Warm cache: record cache disabled, skipping")
		return
	}

	start := time.Now()
	records, err := m.Records().ScanAll(ctx)
	if err != nil {
		// Not fatal: the next request retries the load.
		logger.Warn().Err(err).Msg("Warm cache: record scan failed")
		return
	}

	logger.Info().
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
