package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// RowIncomplete: year or month not yet chosen.
	RowIncomplete RowState = "incomplete"
	// RowNoData: the chosen month has no published price.
	RowNoData RowState = "no-data"
	// RowAwaitingAmount: date resolved to a price but amount is zero.
	RowAwaitingAmount RowState = "awaiting-amount"
	// RowComplete: all inputs present, derived values computed.
	RowComplete RowState = "complete"
)

type RowState string

// Row is one (date, amount) calculation line. Derived values are
// stored as typed decimals and recomputed on every edit; the
// presentation layer reads them and never the reverse.
type Row struct {
	id     uuid.UUID
	date   *MonthKey
	amount decimal.Decimal

	state           RowState
	historicalPrice decimal.Decimal
	goldGrams       decimal.Decimal
	presentValue    decimal.Decimal
}

func newRow() *Row {
	return &Row{id: uuid.New(), state: RowIncomplete}
}

// ID returns the row's stable identity for UI binding.
func (r *Row) ID() uuid.UUID { return r.id }

// Date returns the selected month, if one is set.
func (r *Row) Date() (MonthKey, bool) {
	if r.date == nil {
		return MonthKey{}, false
	}
	return *r.date, true
}

// Amount returns the entered lira amount (zero when unset).
func (r *Row) Amount() decimal.Decimal { return r.amount }

// State returns the row's derived state.
func (r *Row) State() RowState { return r.state }

// HistoricalPrice returns the resolved price for the row's month.
// Absent unless the date resolved against the index.
func (r *Row) HistoricalPrice() (decimal.Decimal, bool) {
	if r.state != RowAwaitingAmount && r.state != RowComplete {
		return decimal.Decimal{}, false
	}
	return r.historicalPrice, true
}

// GoldGrams returns amount/historicalPrice, present only when complete.
func (r *Row) GoldGrams() (decimal.Decimal, bool) {
	if r.state != RowComplete {
		return decimal.Decimal{}, false
	}
	return r.goldGrams, true
}

// PresentValue returns goldGrams*currentPrice, present only when complete.
func (r *Row) PresentValue() (decimal.Decimal, bool) {
	if r.state != RowComplete {
		return decimal.Decimal{}, false
	}
	return r.presentValue, true
}

// recompute rederives state and values from the row's inputs. Every
// outcome is a representable state, never an error.
func (r *Row) recompute(ix *PriceIndex) {
	r.historicalPrice = decimal.Decimal{}
	r.goldGrams = decimal.Decimal{}
	r.presentValue = decimal.Decimal{}

	if r.date == nil {
		r.state = RowIncomplete
		return
	}
	price, ok := ix.Lookup(*r.date)
	if !ok {
		r.state = RowNoData
		return
	}
	r.historicalPrice = price
	if !r.amount.IsPositive() {
		r.state = RowAwaitingAmount
		return
	}
	// Full precision is kept here; rounding happens at presentation.
	r.state = RowComplete
	r.goldGrams = r.amount.Div(price)
	r.presentValue = r.goldGrams.Mul(ix.CurrentPrice())
}

// normalizeAmount maps negative or unset input to zero. Non-numeric
// text never reaches the engine; parsing failures upstream also
// normalize to zero.
func normalizeAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Decimal{}
	}
	return d
}
