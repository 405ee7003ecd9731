package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/OzanA78/doviz-hesaplama/internal/engine"
	"github.com/OzanA78/doviz-hesaplama/internal/provider"
)

// Store is an in-process price source for local development and
// tests. Points are fixed at construction.
type Store struct {
	points []engine.PricePoint
}

var _ provider.PriceSource = (*Store)(nil)

// New builds a store from the given points, sorted ascending.
func New(points []engine.PricePoint) *Store {
	sorted := make([]engine.PricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return &Store{points: sorted}
}

// NewFromFiles seeds the store from <base>/seed_prices.txt, one
// "YYYY-MM,price" line per month. Missing or empty files yield an
// empty store, which surfaces as ErrNoRows on read.
func NewFromFiles(base string) *Store {
	return New(readSeedPoints(filepath.Join(base, "seed_prices.txt")))
}

func (s *Store) HistoricalPrices(_ context.Context) ([]engine.PricePoint, error) {
	if len(s.points) == 0 {
		return nil, provider.ErrNoRows
	}
	out := make([]engine.PricePoint, len(s.points))
	copy(out, s.points)
	return out, nil
}

func (s *Store) CurrentPrice(_ context.Context) (engine.CurrentPrice, error) {
	if len(s.points) == 0 {
		return engine.CurrentPrice{}, provider.ErrNoRows
	}
	last := s.points[len(s.points)-1]
	return engine.CurrentPrice{Price: last.Price, Timestamp: time.Now()}, nil
}

func readSeedPoints(path string) []engine.PricePoint {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []engine.PricePoint
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		key, err := engine.ParseMonthKey(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil || !price.IsPositive() {
			continue
		}
		out = append(out, engine.PricePoint{Date: key, Price: price})
	}
	return out
}
