package schedule

import (
	"context"
	"time"
)

// FakeFetcher is a test double returning scripted prices.
type FakeFetcher struct {
	// Prices is returned by every FetchDay call.
	Prices []HourPrice

	// Err, if set, will be returned by FetchDay.
	Err error

	// Calls counts FetchDay invocations.
	Calls int

	// Days records the requested days.
	Days []time.Time
}

// FetchDay returns the scripted prices.
func (f *FakeFetcher) FetchDay(_ context.Context, day time.Time) ([]HourPrice, error) {
	f.Calls++
	f.Days = append(f.Days, day)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Prices, nil
}
