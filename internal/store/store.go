package store

import (
	"context"
	"time"

	"stockdash/internal/model"
)

// Store is the persistence contract for the price cache. The sync engine
// is the only writer of bars; the series reader only reads.
type Store interface {
	// UpsertBars writes all bars in a single transaction: insert where the
	// (symbol, trade date) key is new, overwrite the numeric fields where it
	// exists. Safe to call repeatedly with identical input.
	UpsertBars(ctx context.Context, bars []model.PriceBar) error

	// RangeQuery returns the bars for symbol on or after since, ascending by
	// trade date. An empty result is not an error.
	RangeQuery(ctx context.Context, symbol string, since time.Time) ([]model.PriceBar, error)

	// SecurityExists reports whether a security row exists for symbol.
	SecurityExists(ctx context.Context, symbol string) (bool, error)

	// ListSecurities returns the catalog ordered by display name ascending.
	ListSecurities(ctx context.Context) ([]model.Security, error)

	// SeedSecurities inserts the catalog only when the table is empty.
	SeedSecurities(ctx context.Context, securities []model.Security) error

	Close() error
}
