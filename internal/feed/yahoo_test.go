package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed(handler http.HandlerFunc) (*YahooFeed, *httptest.Server) {
	ts := httptest.NewServer(handler)
	f := NewYahooFeed("", 6000, 5*time.Second)
	f.BaseURL = ts.URL
	return f, ts
}

const chartBody = `{"chart":{"result":[{
	"timestamp":[1755734400,1755648000],
	"indicators":{"quote":[{
		"open":[null,100.5],
		"high":[103.0,102.0],
		"low":[99.0,98.5],
		"close":[101.5,101.0],
		"volume":[250000,null]
	}]}
}],"error":null}}`

func TestFetchDailyBarsParsesChart(t *testing.T) {
	f, ts := newTestFeed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	})
	defer ts.Close()

	bars, err := f.FetchDailyBars(context.Background(), "TCS.NS", 30)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	// Sorted ascending even though the payload was newest-first. The quote
	// arrays are positional, so values follow their original timestamps.
	assert.True(t, bars[0].Timestamp.Before(bars[1].Timestamp))
	require.NotNil(t, bars[0].Open)
	assert.Equal(t, 100.5, *bars[0].Open)
	assert.Nil(t, bars[0].Volume, "null volume must stay unknown")
	assert.Nil(t, bars[1].Open, "null open must stay unknown")
	require.NotNil(t, bars[1].Volume)
	assert.Equal(t, int64(250000), *bars[1].Volume)
}

func TestFetchDailyBarsEmptyResultIsNotAnError(t *testing.T) {
	f, ts := newTestFeed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	})
	defer ts.Close()

	bars, err := f.FetchDailyBars(context.Background(), "TCS.NS", 30)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchDailyBarsAPIError(t *testing.T) {
	f, ts := newTestFeed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	})
	defer ts.Close()

	_, err := f.FetchDailyBars(context.Background(), "NOPE.NS", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestFetchDailyBarsHTTPFailure(t *testing.T) {
	f, ts := newTestFeed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	defer ts.Close()

	_, err := f.FetchDailyBars(context.Background(), "TCS.NS", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetchDailyBarsRangeBucketing(t *testing.T) {
	var gotRange string
	f, ts := newTestFeed(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.URL.Query().Get("range")
		fmt.Fprint(w, chartBody)
	})
	defer ts.Close()

	cases := map[int]string{
		30:  "1mo",
		60:  "3mo",
		180: "6mo",
		365: "1y",
		500: "2y",
	}
	for days, want := range cases {
		_, err := f.FetchDailyBars(context.Background(), "TCS.NS", days)
		require.NoError(t, err)
		assert.Equal(t, want, gotRange, "days=%d", days)
	}
}

func TestFetchDailyBarsTrimsToRequestedCount(t *testing.T) {
	f, ts := newTestFeed(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody)
	})
	defer ts.Close()

	bars, err := f.FetchDailyBars(context.Background(), "TCS.NS", 1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, int64(1755734400), bars[0].Timestamp.Unix())
}
