// Package combiner stitches component schemes into one continuous NAV index.
package combiner

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/navdash/internal/common"
	"github.com/bobmcallan/navdash/internal/models"
)

// SeriesBuilder builds a live component's series.
type SeriesBuilder interface {
	Build(ctx context.Context, systemTag string, cutoff time.Time) (models.Series, error)
}

// Expander turns a frozen bundle into a synthetic series.
type Expander func(b *models.FrozenBundle) (models.Series, error)

// Segment is one component's contribution to a combined series.
type Segment struct {
	Name       string
	Kind       models.SchemeKind
	Raw        models.Series // as built, before rebasing
	Multiplier float64
	Bundle     *models.FrozenBundle // frozen components only
}

// Rebased returns the segment's points scaled by its multiplier.
func (s Segment) Rebased() models.Series {
	return Rebase(s.Raw, s.Multiplier)
}

// Empty reports whether the segment contributed no points.
func (s Segment) Empty() bool {
	return len(s.Raw) == 0
}

// CombinedSeries is the concatenated, rebased series of a composite view.
type CombinedSeries struct {
	Series   models.Series
	Segments []Segment
}

// Combiner builds composite series.
type Combiner struct {
	builder SeriesBuilder
	expand  Expander
	logger  *common.Logger
}

// NewCombiner creates a combiner; expand is used for frozen components.
func NewCombiner(builder SeriesBuilder, expand Expander, logger *common.Logger) *Combiner {
	return &Combiner{
		builder: builder,
		expand:  expand,
		logger:  logger,
	}
}

// Combine builds every component, oldest first, and concatenates them. Each
// component's NAV is multiplied by the closing rebased NAV of the nearest
// earlier non-empty component over 100, so multipliers compose along the
// chain. Empty components contribute nothing and leave the chain intact.
// cutoff narrows live components only; frozen components are immutable.
func (c *Combiner) Combine(ctx context.Context, src models.CompositeSource, cutoff time.Time) (*CombinedSeries, error) {
	out := &CombinedSeries{
		Segments: make([]Segment, 0, len(src.Components)),
	}

	multiplier := 1.0
	for _, comp := range src.Components {
		seg := Segment{Name: comp.Name}

		switch s := comp.Source.(type) {
		case models.LiveSource:
			seg.Kind = models.SchemeKindLive
			raw, err := c.builder.Build(ctx, s.SystemTag, laterOf(s.StartDate, cutoff))
			if err != nil {
				return nil, fmt.Errorf("component '%s': %w", comp.Name, err)
			}
			seg.Raw = raw
		case models.FrozenSource:
			if s.Bundle == nil {
				return nil, fmt.Errorf("component '%s': frozen source has no bundle", comp.Name)
			}
			seg.Kind = models.SchemeKindFrozen
			seg.Bundle = s.Bundle
			raw, err := c.expand(s.Bundle)
			if err != nil {
				return nil, fmt.Errorf("component '%s': %w", comp.Name, err)
			}
			seg.Raw = raw
		default:
			return nil, fmt.Errorf("component '%s': unsupported source %T", comp.Name, comp.Source)
		}

		seg.Multiplier = multiplier
		out.Segments = append(out.Segments, seg)
		if seg.Empty() {
			c.logger.Debug().Str("component", comp.Name).Msg("Component has no points")
			continue
		}

		rebased := seg.Rebased()
		out.Series = append(out.Series, rebased...)

		last, _ := rebased.Last()
		if last.NAV <= 0 {
			c.logger.Warn().Str("component", comp.Name).Float64("nav", last.NAV).Msg("Component closed at zero NAV, restarting chain")
			multiplier = 1
			continue
		}
		multiplier = last.NAV / models.BaselineNAV
	}

	c.logger.Debug().Int("components", len(out.Segments)).Int("points", len(out.Series)).Msg("Composite combined")
	return out, nil
}

// Rebase returns a copy of s with every NAV multiplied by m.
func Rebase(s models.Series, m float64) models.Series {
	out := s.Clone()
	for i := range out {
		out[i].NAV *= m
	}
	return out
}

// Unrebase reverses Rebase. m must be non-zero; a zero m returns an
// unchanged copy.
func Unrebase(s models.Series, m float64) models.Series {
	out := s.Clone()
	if m == 0 {
		return out
	}
	for i := range out {
		out[i].NAV /= m
	}
	return out
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
