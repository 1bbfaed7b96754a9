package series

import (
	"context"
	"fmt"
	"time"

	"stockdash/internal/model"
	"stockdash/internal/registry"
	"stockdash/internal/store"
	"stockdash/internal/syncer"
)

// cushionDays pads the calendar-day cutoff so weekends and holidays do not
// shrink the window below the requested number of trading bars.
const cushionDays = 5

// Reader is the read-through path: it decides whether to refresh, queries a
// cushioned window, and trims the result to the requested length.
type Reader struct {
	registry *registry.Registry
	store    store.Store
	syncer   *syncer.Engine
	now      func() time.Time
}

// New creates a series reader.
func New(reg *registry.Registry, st store.Store, eng *syncer.Engine) *Reader {
	return &Reader{registry: reg, store: st, syncer: eng, now: time.Now}
}

// GetSeries returns the last `days` daily bars for symbol, oldest first.
// With allowRefresh the cache is synced from upstream first, and a refresh
// failure is an error: a caller who asked for fresh data is entitled to
// know it could not be fetched. Without allowRefresh, cached data is served
// as-is — unless the cache is empty, in which case exactly one refresh is
// forced before giving up.
func (r *Reader) GetSeries(ctx context.Context, symbol string, days int, allowRefresh bool) (*model.StockSeries, error) {
	exists, err := r.store.SecurityExists(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", symbol, err)
	}
	if !exists {
		return nil, fmt.Errorf("series %s: %w", symbol, model.ErrUnknownSymbol)
	}

	if allowRefresh {
		if err := r.syncer.Refresh(ctx, symbol, days); err != nil {
			return nil, err
		}
	}

	today := r.today()
	since := today.AddDate(0, 0, -(days + cushionDays))

	bars, err := r.store.RangeQuery(ctx, symbol, since)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", symbol, err)
	}

	// Cold cache: nothing in the window yet. One forced refresh, then
	// re-query; a second failure propagates.
	if len(bars) == 0 {
		if err := r.syncer.Refresh(ctx, symbol, days); err != nil {
			return nil, err
		}
		bars, err = r.store.RangeQuery(ctx, symbol, since)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", symbol, err)
		}
	}

	// Drop the oldest overshoot the cushion let in. Fewer than `days` bars
	// is fine; under-fill is not an error.
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}

	data := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		data[i] = b.Point()
	}

	return &model.StockSeries{
		Symbol: symbol,
		Name:   r.registry.DisplayName(symbol),
		Count:  len(data),
		Data:   data,
	}, nil
}

func (r *Reader) today() time.Time {
	now := r.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
