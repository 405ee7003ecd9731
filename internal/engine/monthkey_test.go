package engine

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewMonthKey(t *testing.T) {
	cases := []struct {
		year, month int
		ok          bool
	}{
		{2023, 1, true},
		{2023, 12, true},
		{2023, 0, false},
		{2023, 13, false},
		{0, 5, false},
	}
	for i, tc := range cases {
		_, err := NewMonthKey(tc.year, tc.month)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthKeyNext(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2023-01", "2023-02"},
		{"2023-11", "2023-12"},
		{"2023-12", "2024-01"},
	}
	for _, tc := range cases {
		got := MustParseMonthKey(tc.in).Next()
		if got.String() != tc.want {
			t.Fatalf("Next(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseMonthKey(t *testing.T) {
	k, err := ParseMonthKey("2023-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Year != 2023 || k.Month != time.May {
		t.Fatalf("got %+v", k)
	}
	for _, bad := range []string{"", "2023", "2023-13", "05-2023", "2023-5-1"} {
		if _, err := ParseMonthKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestMonthKeyJSON(t *testing.T) {
	k := MustParseMonthKey("2024-03")
	b, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-03"` {
		t.Fatalf("got %s", b)
	}
	var back MonthKey
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != k {
		t.Fatalf("round trip mismatch: %v != %v", back, k)
	}
}
