package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Ports to the price data provider.
type (
	HistoricalReader interface {
		HistoricalPrices(ctx context.Context) ([]PricePoint, error)
	}

	CurrentPriceReader interface {
		CurrentPrice(ctx context.Context) (CurrentPrice, error)
	}
)

// Session holds the per-session state: the immutable price index and
// the one mutable ledger. There are no package-level singletons; the
// owner passes the session to whoever needs it.
type Session struct {
	Index  *PriceIndex
	Ledger *Ledger
}

// LoadSession fetches historical data and the current price, builds
// the index, and opens a ledger with one blank row. Both fetches must
// succeed before the ledger exists; until then nothing is calculable.
func LoadSession(ctx context.Context, hr HistoricalReader, cr CurrentPriceReader) (*Session, error) {
	var (
		points  []PricePoint
		current CurrentPrice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		points, err = hr.HistoricalPrices(gctx)
		if err != nil {
			return fmt.Errorf("fetch historical prices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		current, err = cr.CurrentPrice(gctx)
		if err != nil {
			return fmt.Errorf("fetch current price: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix, err := BuildPriceIndex(points, current)
	if err != nil {
		return nil, err
	}
	return &Session{Index: ix, Ledger: NewLedger(ix)}, nil
}

// PlanRow is the persisted form of one row: its inputs only, derived
// values are recomputed on restore.
type PlanRow struct {
	Date   *MonthKey       `json:"date,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// Plan is a serializable snapshot of a ledger's rows.
type Plan []PlanRow

// Snapshot captures the ledger's rows for named-plan persistence.
func (l *Ledger) Snapshot() Plan {
	plan := make(Plan, 0, len(l.rows))
	for _, r := range l.rows {
		pr := PlanRow{Amount: r.amount}
		if r.date != nil {
			d := *r.date
			pr.Date = &d
		}
		plan = append(plan, pr)
	}
	return plan
}

// Restore replaces the ledger's rows with the plan's. Rows get fresh
// identities and recomputed derived values; restoring never triggers
// auto-append. An empty plan leaves a single blank row.
func (l *Ledger) Restore(plan Plan) {
	l.rows = l.rows[:0]
	l.pending = nil
	for _, pr := range plan {
		r := newRow()
		if pr.Date != nil {
			d := *pr.Date
			r.date = &d
		}
		r.amount = normalizeAmount(pr.Amount)
		r.recompute(l.index)
		l.rows = append(l.rows, r)
	}
	if len(l.rows) == 0 {
		l.rows = append(l.rows, newRow())
	}
	l.recomputeTotals()
}
