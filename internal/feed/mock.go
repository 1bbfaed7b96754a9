package feed

import (
	"context"
	"time"
)

// MockFeed returns controllable fixed data for development and testing.
type MockFeed struct {
	Bars  []RawBar
	Err   error
	Calls int // number of FetchDailyBars invocations
	Days  int // days argument of the last invocation
}

func (m *MockFeed) Name() string { return "mock" }

func (m *MockFeed) FetchDailyBars(_ context.Context, _ string, days int) ([]RawBar, error) {
	m.Calls++
	m.Days = days
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Bars, nil
}

// GenerateBars builds count synthetic daily bars, one per calendar day,
// ending yesterday, oldest first.
func GenerateBars(basePrice float64, count int) []RawBar {
	bars := make([]RawBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		o, h, l, c := p*0.999, p*1.005, p*0.995, p
		v := int64(1000000)
		bars[i] = RawBar{
			Timestamp: time.Now().UTC().AddDate(0, 0, -(count - i)),
			Open:      &o,
			High:      &h,
			Low:       &l,
			Close:     &c,
			Volume:    &v,
		}
	}
	return bars
}
