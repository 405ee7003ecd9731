package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cascadeLedger builds a ledger with n blank rows over the given index.
func cascadeLedger(t *testing.T, ix *PriceIndex, n int) *Ledger {
	t.Helper()
	l := NewLedger(ix)
	for l.Len() < n {
		l.AddRow()
	}
	return l
}

func TestSetDateProposesCascadeOnlyWithSuccessors(t *testing.T) {
	l := cascadeLedger(t, testIndex(t), 1)
	r := l.Rows()[0]

	p, err := l.SetDate(r.ID(), 2023, 1)
	require.NoError(t, err)
	assert.Nil(t, p, "no successors, nothing to cascade")

	l.AddRow()
	p, err = l.SetDate(r.ID(), 2023, 1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Pending())
	assert.Equal(t, "2023-01", p.Start().String())
}

func TestCascadeConfirmAdvancesSuccessors(t *testing.T) {
	ix, err := BuildPriceIndex(
		[]PricePoint{point("2023-01", 2000), point("2023-02", 2100), point("2023-03", 2200)},
		CurrentPrice{Price: decimal.NewFromInt(2500)},
	)
	require.NoError(t, err)
	l := cascadeLedger(t, ix, 3)
	rows := l.Rows()

	p, err := l.SetDate(rows[0].ID(), 2023, 1)
	require.NoError(t, err)
	require.NotNil(t, p)

	l.ResolveCascade(p, true)
	assert.Nil(t, l.PendingCascade())

	for i, want := range []string{"2023-01", "2023-02", "2023-03"} {
		date, ok := rows[i].Date()
		require.True(t, ok, "row %d", i)
		assert.Equal(t, want, date.String())
	}
}

func TestCascadeDeclineLeavesRowsUntouched(t *testing.T) {
	l := cascadeLedger(t, testIndex(t), 3)
	rows := l.Rows()

	p, err := l.SetDate(rows[0].ID(), 2023, 1)
	require.NoError(t, err)
	l.ResolveCascade(p, false)

	for _, r := range rows[1:] {
		_, ok := r.Date()
		assert.False(t, ok)
	}
	assert.Nil(t, l.PendingCascade())
}

func TestCascadeSkipsUnavailableYearsAndContinues(t *testing.T) {
	// Data exists for 2023 and 2025, not 2024. A walk off the end of
	// 2023 must skip the 2024 rows but keep counting months, so a
	// later row can land back inside an available year.
	points := []PricePoint{point("2023-11", 2000), point("2023-12", 2100)}
	for m := 1; m <= 12; m++ {
		points = append(points, PricePoint{Date: MonthKey{Year: 2025, Month: time.Month(m)}, Price: decimal.NewFromInt(3000)})
	}
	ix, err := BuildPriceIndex(points, CurrentPrice{Price: decimal.NewFromInt(3100)})
	require.NoError(t, err)

	// Row 0 edited to 2023-12; 14 successors walk through all of 2024
	// (skipped) into 2025-02.
	l := cascadeLedger(t, ix, 15)
	rows := l.Rows()
	prior, err := l.SetDate(rows[3].ID(), 2025, 6)
	require.NoError(t, err)
	_ = prior

	p, err := l.SetDate(rows[0].ID(), 2023, 12)
	require.NoError(t, err)
	l.ResolveCascade(p, true)

	for i := 1; i <= 12; i++ {
		if _, ok := rows[i].Date(); ok {
			date, _ := rows[i].Date()
			// Rows 1..12 target 2024-01..2024-12: all skipped, except
			// row 3 which keeps its prior 2025-06 selection.
			if i == 3 {
				assert.Equal(t, "2025-06", date.String())
				continue
			}
			t.Fatalf("row %d should have been skipped, has %s", i, date)
		} else if i == 3 {
			t.Fatalf("row 3 should keep its prior date")
		}
	}
	date, ok := rows[13].Date()
	require.True(t, ok)
	assert.Equal(t, "2025-01", date.String())
	date, ok = rows[14].Date()
	require.True(t, ok)
	assert.Equal(t, "2025-02", date.String())
}

func TestCascadeLastProposalWins(t *testing.T) {
	l := cascadeLedger(t, testIndex(t), 3)
	rows := l.Rows()

	first, err := l.SetDate(rows[0].ID(), 2023, 1)
	require.NoError(t, err)
	second, err := l.SetDate(rows[1].ID(), 2023, 2)
	require.NoError(t, err)

	assert.False(t, first.Pending())
	assert.True(t, second.Pending())

	// Resolving the superseded proposal is a no-op.
	l.ResolveCascade(first, true)
	_, ok := rows[1].Date()
	require.True(t, ok) // set directly, not via cascade
	_, ok = rows[2].Date()
	assert.False(t, ok)
	assert.Equal(t, second, l.PendingCascade())

	l.ResolveCascade(second, true)
	date, ok := rows[2].Date()
	require.True(t, ok)
	assert.Equal(t, "2023-03", date.String())
}

func TestCascadeDoesNotAutoAppend(t *testing.T) {
	l := cascadeLedger(t, testIndex(t), 2)
	rows := l.Rows()
	require.NoError(t, l.SetAmount(rows[1].ID(), decimal.NewFromInt(1000)))

	p, err := l.SetDate(rows[0].ID(), 2023, 1)
	require.NoError(t, err)
	l.ResolveCascade(p, true)

	// The cascade completed the last row (2023-02, amount 1000) but
	// must not append.
	assert.Equal(t, RowComplete, rows[1].State())
	assert.Equal(t, 2, l.Len())
}
