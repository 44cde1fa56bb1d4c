package app

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
)

// newCacheScheduler returns a stopped cron that invalidates the record cache
// on spec. Specs carry a seconds field, e.g. "0 30 18 * * *"; descriptors
// such as "@hourly" and "@every 15m" are accepted too.
func newCacheScheduler(spec string, cache interfaces.CacheInvalidator, logger *common.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		logger.Debug().Str("job", "cache_refresh").Msg("Running job")
		cache.Invalidate()
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cache refresh schedule %q: %w", spec, err)
	}

	logger.Info().
		Str("schedule", spec).
		Str("job", "cache_refresh").
		Msg("Job registered")
	return c, nil
}
