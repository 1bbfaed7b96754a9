package model

import (
	"database/sql"
	"time"
)

// DateFormat is the canonical representation of a trade date: a plain
// calendar date with no time component.
const DateFormat = "2006-01-02"

// Security is one catalog entry: the app-facing symbol plus the upstream
// ticker it maps to. Reference data, loaded once at startup and never
// mutated.
type Security struct {
	Symbol     string `yaml:"symbol"`
	Name       string `yaml:"name"`
	UpstreamID string `yaml:"upstream"`
}

// PriceBar is one day's OHLCV record for a security, keyed by
// (Symbol, TradeDate). Numeric fields are nullable: the upstream sometimes
// reports partial bars, and an absent value must stay absent in storage.
type PriceBar struct {
	Symbol    string
	TradeDate time.Time // midnight UTC
	Open      sql.NullFloat64
	High      sql.NullFloat64
	Low       sql.NullFloat64
	Close     sql.NullFloat64
	Volume    sql.NullInt64
}

// PricePoint is the presentation shape of a bar. Unknown values have
// already been replaced with 0.0/0 here; that substitution happens only at
// this boundary, never in storage.
type PricePoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// StockSeries is the response shape for a series request.
type StockSeries struct {
	Symbol string       `json:"symbol"`
	Name   string       `json:"name"`
	Count  int          `json:"count"`
	Data   []PricePoint `json:"data"`
}

// Point materializes a bar for presentation, defaulting unknown fields.
func (b PriceBar) Point() PricePoint {
	return PricePoint{
		Date:   b.TradeDate.Format(DateFormat),
		Open:   b.Open.Float64,
		High:   b.High.Float64,
		Low:    b.Low.Float64,
		Close:  b.Close.Float64,
		Volume: b.Volume.Int64,
	}
}
