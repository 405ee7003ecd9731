package engine

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoData means the provider returned no usable historical rows.
	// A session cannot be opened without it; callers must disable the
	// calculation path and surface a message.
	ErrNoData = errors.New("no historical price data available")
)

// PricePoint is one month's published gram-gold price in lira.
type PricePoint struct {
	Date  MonthKey        `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// CurrentPrice is the present-day gram-gold price.
type CurrentPrice struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// PriceIndex maps month keys to historical prices and carries the
// single present-day price used for every row's present value.
// It is immutable once built.
type PriceIndex struct {
	prices  map[MonthKey]decimal.Decimal
	years   []int
	current decimal.Decimal
}

// BuildPriceIndex constructs an index from the provider's two
// responses. Non-positive prices are dropped; if nothing usable
// remains it fails with ErrNoData. When the current price is absent
// or non-positive, the latest historical point stands in for it,
// which is how the upstream spreadsheet is maintained (the last row
// is today's price).
func BuildPriceIndex(points []PricePoint, current CurrentPrice) (*PriceIndex, error) {
	prices := make(map[MonthKey]decimal.Decimal, len(points))
	yearSet := make(map[int]struct{})
	var latest MonthKey
	var latestPrice decimal.Decimal
	for _, p := range points {
		if !p.Price.IsPositive() {
			continue
		}
		if _, dup := prices[p.Date]; dup {
			// Provider data is sorted ascending; the first row for a
			// month wins, matching a scan-for-first-match lookup.
			continue
		}
		prices[p.Date] = p.Price
		yearSet[p.Date.Year] = struct{}{}
		if len(prices) == 1 || latest.Before(p.Date) {
			latest = p.Date
			latestPrice = p.Price
		}
	}
	if len(prices) == 0 {
		return nil, ErrNoData
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	cur := current.Price
	if !cur.IsPositive() {
		cur = latestPrice
	}
	return &PriceIndex{prices: prices, years: years, current: cur}, nil
}

// Lookup returns the historical price for an exact month key. There
// is no interpolation or nearest-date fallback; a missing month is
// reported as absent.
func (ix *PriceIndex) Lookup(key MonthKey) (decimal.Decimal, bool) {
	price, ok := ix.prices[key]
	return price, ok
}

// Years returns the years with at least one price, ascending.
func (ix *PriceIndex) Years() []int {
	out := make([]int, len(ix.years))
	copy(out, ix.years)
	return out
}

// HasYear reports whether any month of the given year has a price.
func (ix *PriceIndex) HasYear(year int) bool {
	i := sort.SearchInts(ix.years, year)
	return i < len(ix.years) && ix.years[i] == year
}

// CurrentPrice returns the present-day price.
func (ix *PriceIndex) CurrentPrice() decimal.Decimal {
	return ix.current
}

// Len returns the number of indexed months.
func (ix *PriceIndex) Len() int {
	return len(ix.prices)
}
