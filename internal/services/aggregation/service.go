// Package aggregation assembles per-scheme analytics for an account.
package aggregation

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bobmcallan/navdash/internal/archive"
	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/interfaces"
	"github.com/bobmcallan/navdash/internal/models"
	"github.com/bobmcallan/navdash/internal/services/combiner"
	"github.com/bobmcallan/navdash/internal/services/metrics"
	"github.com/bobmcallan/navdash/internal/services/series"
)

// Service implements AggregationService
type Service struct {
	registry interfaces.SchemeRegistry
	builder  combiner.SeriesBuilder
	combiner *combiner.Combiner
	logger   *common.Logger
	now      func() time.Time
}

var _ interfaces.AggregationService = (*Service)(nil)

// NewService creates an aggregation service reading live data from store
func NewService(registry interfaces.SchemeRegistry, store interfaces.RecordStore, logger *common.Logger) *Service {
	builder := series.NewBuilder(store, logger)
	return &Service{
		registry: registry,
		builder:  builder,
		combiner: combiner.NewCombiner(builder, archive.Expand, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for metadata.lastUpdated.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Aggregate computes every scheme the account sees, in display order. A
// failing scheme is reported on its own entry and never aborts the others.
func (s *Service) Aggregate(ctx context.Context, accountID string, opts interfaces.AggregateOptions) (*models.SchemeResults, error) {
	start := time.Now()

	schemes, err := s.registry.SchemesFor(ctx, accountID)
	if err != nil {
		return nil, err
	}

	results := models.NewSchemeResults()
	failed := 0
	for _, sc := range schemes {
		res := s.compute(ctx, sc, opts)
		if res.Error != "" {
			failed++
		}
		results.Add(sc.DisplayName, res)
	}

	s.logger.Info().
		Str("account", accountID).
		Int("schemes", len(schemes)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Aggregation complete")
	return results, nil
}

// Scheme computes a single scheme visible to the account.
func (s *Service) Scheme(ctx context.Context, accountID, name string, opts interfaces.AggregateOptions) (*models.SchemeResult, error) {
	schemes, err := s.registry.SchemesFor(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, sc := range schemes {
		if sc.DisplayName == name {
			res := s.compute(ctx, sc, opts)
			return &res, nil
		}
	}
	return nil, fmt.Errorf("%w: '%s' for account '%s'", interfaces.ErrUnknownScheme, name, accountID)
}

// compute isolates one scheme: errors and panics become the entry's error.
func (s *Service) compute(ctx context.Context, sc models.Scheme, opts interfaces.AggregateOptions) (res models.SchemeResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("scheme", sc.DisplayName).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Scheme computation panicked")
			res = s.failure(sc, opts, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return s.failure(sc, opts, err)
	}

	var err error
	switch src := sc.Source.(type) {
	case models.FrozenSource:
		res, err = s.frozen(sc, src)
	case models.LiveSource:
		res, err = s.live(ctx, sc, src, opts)
	case models.CompositeSource:
		res, err = s.composite(ctx, sc, src, opts)
	default:
		err = fmt.Errorf("unsupported source %T", sc.Source)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("scheme", sc.DisplayName).Msg("Scheme computation failed")
		return s.failure(sc, opts, err)
	}
	return res
}

func (s *Service) frozen(sc models.Scheme, src models.FrozenSource) (models.SchemeResult, error) {
	if src.Bundle == nil {
		return models.SchemeResult{}, fmt.Errorf("frozen scheme '%s' has no bundle", sc.DisplayName)
	}
	data := src.Bundle.Data
	meta := src.Bundle.Metadata
	meta.IsActive = sc.IsActive
	meta.AccountCount = sc.AccountCount
	return models.SchemeResult{Data: &data, Metadata: meta}, nil
}

func (s *Service) live(ctx context.Context, sc models.Scheme, src models.LiveSource, opts interfaces.AggregateOptions) (models.SchemeResult, error) {
	cutoff := laterOf(src.StartDate, opts.From)
	ser, err := s.builder.Build(ctx, src.SystemTag, cutoff)
	if err != nil {
		return models.SchemeResult{}, err
	}

	data := metrics.Compute(ser)
	return models.SchemeResult{Data: &data, Metadata: s.metadata(sc, ser, cutoff)}, nil
}

func (s *Service) composite(ctx context.Context, sc models.Scheme, src models.CompositeSource, opts interfaces.AggregateOptions) (models.SchemeResult, error) {
	cs, err := s.combiner.Combine(ctx, src, opts.From)
	if err != nil {
		return models.SchemeResult{}, err
	}

	data := metrics.ComputeComposite(cs)
	return models.SchemeResult{Data: &data, Metadata: s.metadata(sc, cs.Series, opts.From)}, nil
}

func (s *Service) metadata(sc models.Scheme, ser models.Series, cutoff time.Time) models.Metadata {
	meta := s.baseMetadata(sc, cutoff)
	if first, ok := ser.FirstReal(); ok {
		meta.InceptionDate = models.FormatDate(first.Date)
	}
	if last, ok := ser.Last(); ok {
		meta.DataAsOfDate = models.FormatDate(last.Date)
	}
	return meta
}

func (s *Service) baseMetadata(sc models.Scheme, cutoff time.Time) models.Metadata {
	id := sc.SystemTag
	if id == "" {
		id = sc.DisplayName
	}
	return models.Metadata{
		SchemeID:       id,
		AccountCount:   sc.AccountCount,
		LastUpdated:    s.now().UTC().Format(time.RFC3339),
		IsActive:       sc.IsActive,
		FiltersApplied: models.FiltersApplied{StartDate: models.FormatDate(cutoff)},
	}
}

func (s *Service) failure(sc models.Scheme, opts interfaces.AggregateOptions, err error) models.SchemeResult {
	var cutoff time.Time
	switch src := sc.Source.(type) {
	case models.LiveSource:
		cutoff = laterOf(src.StartDate, opts.From)
	case models.CompositeSource:
		cutoff = opts.From
	}
	return models.SchemeResult{
		Metadata: s.baseMetadata(sc, cutoff),
		Error:    err.Error(),
	}
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
