package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/OzanA78/doviz-hesaplama/internal/amqp"
	"github.com/OzanA78/doviz-hesaplama/internal/engine"
	"github.com/OzanA78/doviz-hesaplama/internal/provider/memory"
)

type fakeStore struct {
	points  []engine.PricePoint
	current engine.CurrentPrice
	calls   int
	err     error
}

func (f *fakeStore) ReplaceSnapshot(_ context.Context, points []engine.PricePoint, current engine.CurrentPrice) error {
	if f.err != nil {
		return f.err
	}
	f.points = points
	f.current = current
	f.calls++
	return nil
}

type fakePublisher struct {
	messages []*amqp.PricesUpdatedMessage
	err      error
}

func (f *fakePublisher) PublishPricesUpdated(_ context.Context, msg *amqp.PricesUpdatedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func seededSource() *memory.Store {
	return memory.New([]engine.PricePoint{
		{Date: engine.MustParseMonthKey("2023-01"), Price: decimal.NewFromInt(2000)},
		{Date: engine.MustParseMonthKey("2023-02"), Price: decimal.NewFromInt(2100)},
	})
}

func TestRefreshOnceWritesSnapshotAndPublishes(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	w := NewRefreshWorker(seededSource(), store, pub)

	if err := w.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if store.calls != 1 || len(store.points) != 2 {
		t.Fatalf("store calls = %d points = %d, want 1 call with 2 points", store.calls, len(store.points))
	}
	if !store.current.Price.Equal(decimal.NewFromInt(2100)) {
		t.Errorf("current price = %s, want 2100", store.current.Price)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if pub.messages[0].Count != 2 || pub.messages[0].Latest != "2023-02" {
		t.Errorf("message = %+v, want count 2 latest 2023-02", pub.messages[0])
	}
}

func TestRefreshOnceEmptySourceFails(t *testing.T) {
	store := &fakeStore{}
	w := NewRefreshWorker(memory.New(nil), store, nil)

	if err := w.RefreshOnce(context.Background()); err == nil {
		t.Fatal("expected error for empty source")
	}
	if store.calls != 0 {
		t.Errorf("snapshot written despite fetch failure")
	}
}

func TestRefreshOnceStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	pub := &fakePublisher{}
	w := NewRefreshWorker(seededSource(), store, pub)

	if err := w.RefreshOnce(context.Background()); err == nil {
		t.Fatal("expected error when snapshot write fails")
	}
	if len(pub.messages) != 0 {
		t.Errorf("event published despite failed write")
	}
}

func TestRefreshOncePublishFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	w := NewRefreshWorker(seededSource(), store, pub)

	if err := w.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce: %v", err)
	}
	if store.calls != 1 {
		t.Errorf("snapshot not written")
	}
}
