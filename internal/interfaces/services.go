package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/navdash/internal/models"
)

var (
	// ErrUnknownAccount is returned when an account has no configured schemes
	ErrUnknownAccount = errors.New("unknown account")

	// ErrUnknownScheme is returned when a scheme is not visible to an account
	ErrUnknownScheme = errors.New("unknown scheme")
)

// SchemeRegistry resolves which schemes an account sees.
type SchemeRegistry interface {
	// SchemesFor returns the account's schemes in display order
	SchemesFor(ctx context.Context, accountID string) ([]models.Scheme, error)

	// Scheme returns a single scheme by display name
	Scheme(ctx context.Context, name string) (models.Scheme, error)

	// Schemes returns every configured scheme in configuration order
	Schemes() []models.Scheme
}

// AggregateOptions narrows an aggregation request.
type AggregateOptions struct {
	// From is a request-level cutoff for live data; the later of this and
	// a scheme's configured start date wins. Zero means no request cutoff.
	From time.Time
}

// AggregationService produces per-scheme analytics for an account.
type AggregationService interface {
	// Aggregate computes every scheme the account sees, in display order.
	// Only an unknown account fails the whole call.
	Aggregate(ctx context.Context, accountID string, opts AggregateOptions) (*models.SchemeResults, error)

	// Scheme computes a single scheme visible to the account.
	Scheme(ctx context.Context, accountID, name string, opts AggregateOptions) (*models.SchemeResult, error)
}
