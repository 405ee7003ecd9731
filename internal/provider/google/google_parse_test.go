package google

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParsePricePoints(t *testing.T) {
	values := [][]interface{}{
		{"Tarih", "Fiyat"},         // header
		{"2023-01", "1250,75"},     // decimal comma
		{"2023-02", "1.300,50"},    // thousands dot + decimal comma
		{"2023-03", "1350.25"},     // plain dot decimal
		{"2023-04", "abc"},         // bad price
		{"not-a-date", "100"},      // bad date
		{"2023-05", "0"},           // non-positive
		{"2023-06"},                // short row
		{"", "200"},                // empty date
	}

	points, dropped := parsePricePoints(values)
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if dropped != 6 {
		t.Fatalf("got %d dropped, want 6", dropped)
	}
	wants := []struct {
		date  string
		price string
	}{
		{"2023-01", "1250.75"},
		{"2023-02", "1300.5"},
		{"2023-03", "1350.25"},
	}
	for i, w := range wants {
		if points[i].Date.String() != w.date {
			t.Fatalf("point %d date = %s, want %s", i, points[i].Date, w.date)
		}
		want, _ := decimal.NewFromString(w.price)
		if !points[i].Price.Equal(want) {
			t.Fatalf("point %d price = %s, want %s", i, points[i].Price, want)
		}
	}
}

func TestNormalizeDecimal(t *testing.T) {
	cases := map[string]string{
		"1250,75":   "1250.75",
		"1.250,75":  "1250.75",
		"1250.75":   "1250.75",
		"1250":      "1250",
		"2.500.000": "2.500.000", // dot-only stays as-is, rejected later
	}
	for in, want := range cases {
		if got := normalizeDecimal(in); got != want {
			t.Fatalf("normalizeDecimal(%q) = %q, want %q", in, got, want)
		}
	}
}
