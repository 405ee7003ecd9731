package engine

import "github.com/google/uuid"

// CascadeProposal is a pending offer to advance the dates of the rows
// following an edited row, one month per row. It decouples the user's
// confirm/decline decision from any particular UI widget: the ledger
// hands out the proposal and the caller resolves it later.
type CascadeProposal struct {
	ledger *Ledger
	rowID  uuid.UUID
	start  MonthKey
}

// Start returns the edited row's new date, the base of the sequence.
func (p *CascadeProposal) Start() MonthKey { return p.start }

// Pending reports whether the proposal is still the ledger's active
// one. A later date edit supersedes it.
func (p *CascadeProposal) Pending() bool {
	return p.ledger.pending == p
}

// ResolveCascade settles a proposal. Accepting walks the rows after
// the edited one in order, assigning each the next month of the
// intended sequence; a row whose target year has no price data is
// left untouched while the sequence still advances. Declining, or
// resolving a superseded proposal, changes nothing.
func (l *Ledger) ResolveCascade(p *CascadeProposal, accept bool) {
	if p == nil || l.pending != p {
		return
	}
	l.pending = nil
	if !accept {
		return
	}
	i, r := l.find(p.rowID)
	if r == nil {
		return
	}
	intended := p.start
	for _, next := range l.rows[i+1:] {
		intended = intended.Next()
		if !l.index.HasYear(intended.Year) {
			continue
		}
		d := intended
		next.date = &d
		next.recompute(l.index)
	}
	l.recomputeTotals()
}

// PendingCascade returns the outstanding proposal, if any.
func (l *Ledger) PendingCascade() *CascadeProposal {
	return l.pending
}
