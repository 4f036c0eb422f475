package memory

import (
	"context"
	"errors"
	"testing"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
)

func TestSignalStore_InsertAndGet(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	sig := &domain.TradeSignal{
		RunID:       "run1",
		Seq:         0,
		TimestampMs: 1000,
		Side:        domain.SideBuy,
		Price:       98.85,
		Quantity:    40.46,
		Level:       1,
	}

	if err := store.Insert(ctx, sig); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(got))
	}
	if got[0].Price != 98.85 || got[0].Side != domain.SideBuy {
		t.Errorf("signal mismatch: %+v", got[0])
	}
}

func TestSignalStore_DuplicateKey(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	sig := &domain.TradeSignal{RunID: "run1", Seq: 0, Side: domain.SideBuy}
	if err := store.Insert(ctx, sig); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	if err := store.Insert(ctx, sig); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestSignalStore_BulkOrdering(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	// Insert out of order; reads come back by seq.
	signals := []*domain.TradeSignal{
		{RunID: "run1", Seq: 2, Side: domain.SideBuy},
		{RunID: "run1", Seq: 0, Side: domain.SideBuy},
		{RunID: "run1", Seq: 1, Side: domain.SideSell},
		{RunID: "run2", Seq: 0, Side: domain.SideBuy},
	}
	if err := store.InsertBulk(ctx, signals); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 signals, got %d", len(got))
	}
	for i, sig := range got {
		if sig.Seq != i {
			t.Errorf("position %d: expected seq %d, got %d", i, i, sig.Seq)
		}
	}
}

func TestSignalStore_InvalidInput(t *testing.T) {
	store := NewSignalStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.TradeSignal{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty run id, got %v", err)
	}
}
