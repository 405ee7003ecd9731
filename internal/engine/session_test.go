package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	points  []PricePoint
	current CurrentPrice
	histErr error
	curErr  error
}

func (f *fakeProvider) HistoricalPrices(context.Context) ([]PricePoint, error) {
	return f.points, f.histErr
}

func (f *fakeProvider) CurrentPrice(context.Context) (CurrentPrice, error) {
	return f.current, f.curErr
}

func TestLoadSession(t *testing.T) {
	src := &fakeProvider{
		points:  []PricePoint{point("2023-01", 2000), point("2023-02", 2100)},
		current: CurrentPrice{Price: decimal.NewFromInt(2500), Timestamp: time.Now()},
	}
	s, err := LoadSession(context.Background(), src, src)
	require.NoError(t, err)
	require.NotNil(t, s.Index)
	require.NotNil(t, s.Ledger)
	assert.Equal(t, 1, s.Ledger.Len())
	assert.True(t, s.Index.CurrentPrice().Equal(decimal.NewFromInt(2500)))
}

func TestLoadSessionEmptyData(t *testing.T) {
	// No historical rows: the session must not come up, there is no
	// ledger to operate on.
	src := &fakeProvider{current: CurrentPrice{Price: decimal.NewFromInt(2500)}}
	s, err := LoadSession(context.Background(), src, src)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, s)
}

func TestLoadSessionFetchFailure(t *testing.T) {
	boom := errors.New("provider down")

	src := &fakeProvider{histErr: boom, current: CurrentPrice{Price: decimal.NewFromInt(1)}}
	_, err := LoadSession(context.Background(), src, src)
	assert.ErrorIs(t, err, boom)

	src = &fakeProvider{points: []PricePoint{point("2023-01", 2000)}, curErr: boom}
	_, err = LoadSession(context.Background(), src, src)
	assert.ErrorIs(t, err, boom)
}

func TestPlanSnapshotRestore(t *testing.T) {
	l := NewLedger(testIndex(t))
	r := l.Rows()[0]
	_, err := l.SetDate(r.ID(), 2023, 1)
	require.NoError(t, err)
	require.NoError(t, l.SetAmount(r.ID(), d(10000))) // auto-append

	plan := l.Snapshot()
	require.Len(t, plan, 2)
	require.NotNil(t, plan[0].Date)
	assert.Equal(t, "2023-01", plan[0].Date.String())
	assert.True(t, plan[0].Amount.Equal(d(10000)))

	// Restore into a fresh ledger: same inputs, recomputed values,
	// and no auto-append on top.
	l2 := NewLedger(testIndex(t))
	l2.Restore(plan)
	require.Equal(t, 2, l2.Len())
	assert.Equal(t, RowComplete, l2.Rows()[0].State())
	pv, ok := l2.Rows()[0].PresentValue()
	require.True(t, ok)
	assert.True(t, pv.Equal(d(12500)))
	assert.True(t, l2.Totals().Amount.Equal(l.Totals().Amount))
}

func TestRestoreEmptyPlan(t *testing.T) {
	l := NewLedger(testIndex(t))
	require.NoError(t, l.SetAmount(l.Rows()[0].ID(), d(500)))

	l.Restore(nil)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, RowIncomplete, l.Rows()[0].State())
	assert.True(t, l.Totals().Amount.IsZero())
}
