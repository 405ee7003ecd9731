// Package worker refreshes the local price snapshot from the upstream
// spreadsheet on a fixed interval.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/OzanA78/doviz-hesaplama/internal/amqp"
	"github.com/OzanA78/doviz-hesaplama/internal/engine"
	"github.com/OzanA78/doviz-hesaplama/internal/provider"
)

// SnapshotWriter persists a full price snapshot.
type SnapshotWriter interface {
	ReplaceSnapshot(ctx context.Context, points []engine.PricePoint, current engine.CurrentPrice) error
}

// EventPublisher announces a completed refresh to interested consumers.
type EventPublisher interface {
	PublishPricesUpdated(ctx context.Context, msg *amqp.PricesUpdatedMessage) error
}

// RefreshWorker pulls prices from the source and writes them to local
// storage so the server can keep answering when the spreadsheet is
// unreachable.
type RefreshWorker struct {
	source provider.PriceSource
	store  SnapshotWriter
	events EventPublisher // nil disables eventing
}

func NewRefreshWorker(source provider.PriceSource, store SnapshotWriter, events EventPublisher) *RefreshWorker {
	return &RefreshWorker{
		source: source,
		store:  store,
		events: events,
	}
}

// RefreshOnce fetches the full price history plus the current price
// and replaces the stored snapshot.
func (w *RefreshWorker) RefreshOnce(ctx context.Context) error {
	points, err := w.source.HistoricalPrices(ctx)
	if err != nil {
		return fmt.Errorf("fetch historical prices: %w", err)
	}
	current, err := w.source.CurrentPrice(ctx)
	if err != nil {
		return fmt.Errorf("fetch current price: %w", err)
	}

	if err := w.store.ReplaceSnapshot(ctx, points, current); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	latest := ""
	if len(points) > 0 {
		latest = points[len(points)-1].Date.String()
	}
	slog.InfoContext(ctx, "Price snapshot refreshed", "points", len(points), "latest", latest)

	if w.events != nil {
		msg := amqp.NewPricesUpdatedMessage(len(points), latest)
		if err := w.events.PublishPricesUpdated(ctx, msg); err != nil {
			// The snapshot is already written; consumers catch up on
			// their cache TTL.
			slog.WarnContext(ctx, "Failed to publish prices-updated event", "error", err)
		}
	}
	return nil
}

// Run refreshes immediately, then on every interval tick until the
// context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context, interval time.Duration) {
	if err := w.RefreshOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.RefreshOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
			}
		}
	}
}
