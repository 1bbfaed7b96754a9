package syncer

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"stockdash/internal/feed"
	"stockdash/internal/model"
	"stockdash/internal/registry"
	"stockdash/internal/store"
)

const (
	// overFetchFactor widens the upstream window beyond the requested
	// lookback: calendar days are not trading days, and weekends, holidays
	// and provider latency all eat into the window.
	overFetchFactor = 2
	minFetchDays    = 60
)

// Engine reconciles the local price cache against the upstream feed. It is
// the only writer of price bars.
type Engine struct {
	registry *registry.Registry
	store    store.Store
	feed     feed.Feed
}

// New creates a sync engine.
func New(reg *registry.Registry, st store.Store, f feed.Feed) *Engine {
	return &Engine{registry: reg, store: st, feed: f}
}

// Refresh fetches an over-sized window of daily bars for symbol and upserts
// the normalized rows. All rows land in one transaction, so a storage
// failure never leaves a half-synced window behind.
func (e *Engine) Refresh(ctx context.Context, symbol string, days int) error {
	upstreamID, ok := e.registry.Resolve(symbol)
	if !ok {
		return fmt.Errorf("refresh %s: %w", symbol, model.ErrUnknownSymbol)
	}

	// Registry and store must agree; a mapped symbol without a security row
	// means the catalog and the database drifted apart.
	exists, err := e.store.SecurityExists(ctx, symbol)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", symbol, err)
	}
	if !exists {
		log.Printf("[WARN] symbol %s resolves upstream but has no security row", symbol)
		return fmt.Errorf("refresh %s: %w", symbol, model.ErrUnregisteredSymbol)
	}

	fetchDays := days * overFetchFactor
	if fetchDays < minFetchDays {
		fetchDays = minFetchDays
	}

	raw, err := e.feed.FetchDailyBars(ctx, upstreamID, fetchDays)
	if err != nil {
		return fmt.Errorf("refresh %s: %w: %v", symbol, model.ErrUpstreamUnavailable, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("refresh %s: %w: empty result", symbol, model.ErrUpstreamUnavailable)
	}

	bars := normalize(symbol, raw)
	if err := e.store.UpsertBars(ctx, bars); err != nil {
		return fmt.Errorf("refresh %s: store: %w", symbol, err)
	}

	log.Printf("[INFO] refreshed %s: %d bars upserted", symbol, len(bars))
	return nil
}

// normalize turns raw upstream bars into storable rows: timestamps collapse
// to a UTC calendar date, absent numeric fields stay unknown, and duplicate
// dates within one fetch resolve last-seen-wins. Bars with no price data at
// all are exchange-holiday padding and are dropped.
func normalize(symbol string, raw []feed.RawBar) []model.PriceBar {
	out := make([]model.PriceBar, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, rb := range raw {
		if rb.Open == nil && rb.High == nil && rb.Low == nil && rb.Close == nil {
			continue
		}
		ts := rb.Timestamp.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)

		bar := model.PriceBar{
			Symbol:    symbol,
			TradeDate: day,
			Open:      nullFloat(rb.Open),
			High:      nullFloat(rb.High),
			Low:       nullFloat(rb.Low),
			Close:     nullFloat(rb.Close),
			Volume:    nullVolume(rb.Volume),
		}

		key := day.Format(model.DateFormat)
		if i, seen := index[key]; seen {
			out[i] = bar
		} else {
			index[key] = len(out)
			out = append(out, bar)
		}
	}
	return out
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// nullVolume keeps a reported volume only when it is a valid non-negative
// count.
func nullVolume(v *int64) sql.NullInt64 {
	if v == nil || *v < 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
