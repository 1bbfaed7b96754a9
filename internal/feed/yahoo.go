package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// YahooFeed fetches daily bars from the Yahoo Finance public chart API.
// Yahoo throttles anonymous clients, so every request passes through a
// rate limiter before it reaches the wire.
type YahooFeed struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewYahooFeed creates a Yahoo Finance feed with optional proxy support.
// ratePerMinute caps outbound requests; timeout bounds each call.
func NewYahooFeed(proxyURL string, ratePerMinute int, timeout time.Duration) *YahooFeed {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFeed{
		BaseURL: defaultBaseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60), 1),
	}
}

func (f *YahooFeed) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// The quote arrays are pointer-typed: Yahoo pads non-reported values with
// JSON null, and those must stay nil rather than decay to zero.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRange buckets a day count into the coarse range strings the chart
// API accepts. Max for daily interval is "2y".
func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	default:
		return "2y"
	}
}

func at[T any](arr []*T, i int) *T {
	if i >= len(arr) {
		return nil
	}
	return arr[i]
}

func (f *YahooFeed) FetchDailyBars(ctx context.Context, upstreamID string, days int) ([]RawBar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("yahoo rate limit: %w", err)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(upstreamID), yahooRange(days))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	// No result for the ticker: treat as "no data", not a failure.
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]RawBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		bars = append(bars, RawBar{
			Timestamp: time.Unix(ts, 0),
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     at(quote.Close, i),
			Volume:    at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
