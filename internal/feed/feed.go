package feed

import (
	"context"
	"time"
)

// RawBar is one daily bar exactly as the upstream reported it: a timestamp
// that may carry time-of-day and zone, and numeric fields that may be
// absent. Nil means the provider did not report the value.
type RawBar struct {
	Timestamp time.Time
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *int64
}

// Feed defines the interface for fetching daily bars from an upstream
// provider. An empty result means "no data available" and is not an error;
// transport and provider failures are.
type Feed interface {
	FetchDailyBars(ctx context.Context, upstreamID string, days int) ([]RawBar, error)
	Name() string
}
