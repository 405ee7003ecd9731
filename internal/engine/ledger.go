package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrMinimumRows rejects removing the last remaining row; the
	// ledger must always stay editable.
	ErrMinimumRows = errors.New("ledger must keep at least one row")
	// ErrInvalidTarget rejects a bulk-generate request that cannot be
	// satisfied from the current ledger.
	ErrInvalidTarget = errors.New("invalid row generation target")
	// ErrUnknownRow means the referenced row is not in the ledger.
	ErrUnknownRow = errors.New("unknown row")
)

// Totals are the ledger-wide sums. Amount covers every row; gold and
// present value cover only complete rows.
type Totals struct {
	Amount       decimal.Decimal
	GoldGrams    decimal.Decimal
	PresentValue decimal.Decimal
}

// Ledger is the ordered set of rows for one session. All operations
// are synchronous and run to completion; callers drive it from a
// single event loop so no locking is involved.
type Ledger struct {
	index   *PriceIndex
	rows    []*Row
	totals  Totals
	pending *CascadeProposal
}

// NewLedger creates a ledger with a single blank row.
func NewLedger(ix *PriceIndex) *Ledger {
	l := &Ledger{index: ix}
	l.rows = append(l.rows, newRow())
	return l
}

// Rows returns the rows in display order.
func (l *Ledger) Rows() []*Row {
	out := make([]*Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Len returns the number of rows.
func (l *Ledger) Len() int { return len(l.rows) }

// Totals returns the current aggregate sums.
func (l *Ledger) Totals() Totals { return l.totals }

// Row returns the row with the given id.
func (l *Ledger) Row(id uuid.UUID) (*Row, bool) {
	_, r := l.find(id)
	return r, r != nil
}

func (l *Ledger) find(id uuid.UUID) (int, *Row) {
	for i, r := range l.rows {
		if r.id == id {
			return i, r
		}
	}
	return -1, nil
}

// AddRow appends a blank row at the end.
func (l *Ledger) AddRow() *Row {
	r := newRow()
	l.rows = append(l.rows, r)
	l.recomputeTotals()
	return r
}

// addSeeded appends a row pre-filled from a predecessor. The seed
// date is only applied when its year has price data, mirroring a year
// selector that does not offer speculative future years.
func (l *Ledger) addSeeded(date *MonthKey, amount decimal.Decimal) *Row {
	r := newRow()
	if date != nil && l.index.HasYear(date.Year) {
		d := *date
		r.date = &d
	}
	r.amount = normalizeAmount(amount)
	r.recompute(l.index)
	l.rows = append(l.rows, r)
	l.recomputeTotals()
	return r
}

// RemoveRow deletes the row with the given id. The last remaining
// row cannot be removed.
func (l *Ledger) RemoveRow(id uuid.UUID) error {
	i, r := l.find(id)
	if r == nil {
		return ErrUnknownRow
	}
	if len(l.rows) == 1 {
		return ErrMinimumRows
	}
	if l.pending != nil && l.pending.rowID == id {
		l.pending = nil
	}
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
	l.recomputeTotals()
	return nil
}

// Clear resets the ledger to a single blank row and discards any
// pending cascade.
func (l *Ledger) Clear() {
	l.rows = []*Row{newRow()}
	l.pending = nil
	l.recomputeTotals()
}

// SetAmount updates a row's amount from a user edit. Negative input
// normalizes to zero. May auto-append a seeded row when this edit
// completes the last row.
func (l *Ledger) SetAmount(id uuid.UUID, amount decimal.Decimal) error {
	_, r := l.find(id)
	if r == nil {
		return ErrUnknownRow
	}
	wasComplete := r.state == RowComplete
	r.amount = normalizeAmount(amount)
	r.recompute(l.index)
	l.recomputeTotals()
	l.maybeAutoAppend(r, wasComplete)
	return nil
}

// SetDate updates a row's month selection from a user edit. When rows
// follow the edited one, the returned proposal offers to cascade the
// new date forward; it replaces any proposal still pending. A nil
// proposal means nothing to cascade.
func (l *Ledger) SetDate(id uuid.UUID, year, month int) (*CascadeProposal, error) {
	i, r := l.find(id)
	if r == nil {
		return nil, ErrUnknownRow
	}
	key, err := NewMonthKey(year, month)
	if err != nil {
		return nil, fmt.Errorf("set date: %w", err)
	}
	wasComplete := r.state == RowComplete
	r.date = &key
	r.recompute(l.index)
	l.recomputeTotals()
	l.maybeAutoAppend(r, wasComplete)

	if i < len(l.rows)-1 {
		l.pending = &CascadeProposal{ledger: l, rowID: id, start: key}
		return l.pending, nil
	}
	return nil, nil
}

// maybeAutoAppend appends one seeded row after a user edit turns the
// last row complete. Seeding alone never chains another append, and
// cascade application and plan restore bypass this entirely.
func (l *Ledger) maybeAutoAppend(r *Row, wasComplete bool) {
	if wasComplete || r.state != RowComplete {
		return
	}
	if r != l.rows[len(l.rows)-1] {
		return
	}
	next := r.date.Next()
	l.addSeeded(&next, r.amount)
}

// GenerateRows grows the ledger to target rows. Each appended row
// advances the intended date sequence by one month from the last
// existing row and carries that row's amount. The seed row must have
// a date and a positive amount.
func (l *Ledger) GenerateRows(target int) error {
	n := len(l.rows)
	if target <= n {
		return fmt.Errorf("%w: target %d with %d rows", ErrInvalidTarget, target, n)
	}
	seed := l.rows[n-1]
	if seed.date == nil || !seed.amount.IsPositive() {
		return fmt.Errorf("%w: seed row needs a date and an amount", ErrInvalidTarget)
	}
	intended := *seed.date
	amount := seed.amount
	for len(l.rows) < target {
		intended = intended.Next()
		l.addSeeded(&intended, amount)
	}
	return nil
}

// recomputeTotals refolds the aggregate sums over every row. The
// totals are never drifted incrementally.
func (l *Ledger) recomputeTotals() {
	var t Totals
	for _, r := range l.rows {
		t.Amount = t.Amount.Add(r.amount)
		if r.state == RowComplete {
			t.GoldGrams = t.GoldGrams.Add(r.goldGrams)
			t.PresentValue = t.PresentValue.Add(r.presentValue)
		}
	}
	l.totals = t
}
