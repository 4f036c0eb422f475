package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
)

func TestSignalStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(pool)
	ctx := context.Background()

	sig := &domain.TradeSignal{
		RunID:       "run-1",
		Seq:         0,
		TimestampMs: 1704103200000,
		Side:        domain.SideBuy,
		Price:       98.85,
		Quantity:    40.46,
		Level:       1,
	}

	require.NoError(t, store.Insert(ctx, sig))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.SideBuy, got[0].Side)
	require.Equal(t, 98.85, got[0].Price)
	require.Equal(t, 1, got[0].Level)
}

func TestSignalStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(pool)
	ctx := context.Background()

	sig := &domain.TradeSignal{RunID: "run-1", Seq: 0, Side: domain.SideBuy}
	require.NoError(t, store.Insert(ctx, sig))

	err := store.Insert(ctx, sig)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSignalStore_BulkAtomicOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.TradeSignal{RunID: "run-1", Seq: 1, Side: domain.SideSell}))

	// Batch collides on seq 1; seq 0 must not survive the rollback.
	batch := []*domain.TradeSignal{
		{RunID: "run-1", Seq: 0, Side: domain.SideBuy},
		{RunID: "run-1", Seq: 1, Side: domain.SideSell},
	}
	err := store.InsertBulk(ctx, batch)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].Seq)
}

func TestSignalStore_BulkOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(pool)
	ctx := context.Background()

	signals := []*domain.TradeSignal{
		{RunID: "run-1", Seq: 2, TimestampMs: 3000, Side: domain.SideBuy, Price: 97.0, Quantity: 10, Level: 3},
		{RunID: "run-1", Seq: 0, TimestampMs: 1000, Side: domain.SideBuy, Price: 99.0, Quantity: 10, Level: 1},
		{RunID: "run-1", Seq: 1, TimestampMs: 2000, Side: domain.SideSell, Price: 100.1, Quantity: 10, Level: 1},
		{RunID: "run-2", Seq: 0, TimestampMs: 1000, Side: domain.SideBuy, Price: 50.0, Quantity: 5, Level: 2},
	}
	require.NoError(t, store.InsertBulk(ctx, signals))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, sig := range got {
		require.Equal(t, i, sig.Seq)
	}
}

func TestSignalStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(pool)
	ctx := context.Background()

	require.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	require.ErrorIs(t, store.Insert(ctx, &domain.TradeSignal{}), storage.ErrInvalidInput)
}
