package schedule

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the Elering Nord Pool day-ahead price endpoint.
const DefaultURL = "https://dashboard.elering.ee/api/nps/price/csv"

// DefaultArea is the bidding area field (Lithuania).
const DefaultArea = "lt"

// csvTimeLayout is the local timestamp format in Elering CSV rows.
const csvTimeLayout = "02.01.2006 15:04"

// Fetcher retrieves the day-ahead hourly prices for one local day.
type Fetcher interface {
	FetchDay(ctx context.Context, day time.Time) ([]HourPrice, error)
}

// EleringFetcher fetches prices from the Elering dashboard API as CSV.
type EleringFetcher struct {
	URL    string         // endpoint, DefaultURL if empty
	Area   string         // bidding area, DefaultArea if empty
	TZ     *time.Location // local market timezone
	Client *http.Client   // http.DefaultClient if nil
}

// FetchDay requests the price curve covering the given local day.
// Rows that fail to parse (headers, other areas) are skipped.
func (f *EleringFetcher) FetchDay(ctx context.Context, day time.Time) ([]HourPrice, error) {
	endpoint := f.URL
	if endpoint == "" {
		endpoint = DefaultURL
	}
	area := f.Area
	if area == "" {
		area = DefaultArea
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	y, m, d := day.In(f.TZ).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, f.TZ)
	end := time.Date(y, m, d, 23, 59, 59, 0, f.TZ)

	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	q.Set("fields", area)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch prices: unexpected status %s", resp.Status)
	}

	prices, err := parsePriceCSV(resp.Body, start, f.TZ)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// parsePriceCSV reads semicolon-separated rows of the form
// "<epoch>";"<dd.mm.yyyy hh:mm>";"<EUR/MWh with comma decimal>" and
// keeps the hours falling on the given local day, sorted.
func parsePriceCSV(r io.Reader, day time.Time, tz *time.Location) ([]HourPrice, error) {
	rdr := csv.NewReader(r)
	rdr.Comma = ';'
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	var out []HourPrice
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse price csv: %w", err)
		}
		if len(rec) < 3 {
			continue
		}

		ts, err := time.ParseInLocation(csvTimeLayout, rec[1], tz)
		if err != nil {
			continue // header or malformed row
		}
		eurMWh, err := strconv.ParseFloat(strings.Replace(rec[2], ",", ".", 1), 64)
		if err != nil {
			continue
		}

		if sameDay(ts, day) {
			out = append(out, HourPrice{Hour: ts, Price: eurMWh / 1000.0})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
