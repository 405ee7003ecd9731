package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthKey identifies one calendar month, the granularity prices are
// published at ("2023-01").
type MonthKey struct {
	Year  int
	Month time.Month
}

// NewMonthKey returns a MonthKey for the given year and 1-12 month.
func NewMonthKey(year, month int) (MonthKey, error) {
	if year < 1 {
		return MonthKey{}, fmt.Errorf("invalid year: %d", year)
	}
	if month < 1 || month > 12 {
		return MonthKey{}, fmt.Errorf("invalid month: %d", month)
	}
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

// Next returns the following month, rolling the year over after December.
func (k MonthKey) Next() MonthKey {
	if k.Month == time.December {
		return MonthKey{Year: k.Year + 1, Month: time.January}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Before reports whether k is earlier than x.
func (k MonthKey) Before(x MonthKey) bool {
	if k.Year != x.Year {
		return k.Year < x.Year
	}
	return k.Month < x.Month
}

// String formats the key as "YYYY-MM".
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// ParseMonthKey parses a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q want format \"YYYY-MM\": %w", s, err)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// MustParseMonthKey is like ParseMonthKey but panics on error.
func MustParseMonthKey(s string) MonthKey {
	k, err := ParseMonthKey(s)
	if err != nil {
		panic(err.Error())
	}
	return k
}

func (k MonthKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *MonthKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonthKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

var _ json.Marshaler = (*MonthKey)(nil)
var _ json.Unmarshaler = (*MonthKey)(nil)
