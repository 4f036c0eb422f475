package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
)

func makeBars(symbol string, startMs int64, closes ...float64) []*domain.Bar {
	bars := make([]*domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = &domain.Bar{
			Symbol:      symbol,
			TimestampMs: startMs + int64(i)*60_000,
			Open:        c,
			High:        c + 0.1,
			Low:         c - 0.1,
			Close:       c,
			Volume:      1000,
		}
	}
	return bars
}

func TestBarStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, makeBars("TQQQ", 1704103200000, 100, 101, 102)))

	got, err := store.GetBySymbol(ctx, "TQQQ")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		require.Greater(t, got[i].TimestampMs, got[i-1].TimestampMs)
	}
	require.Equal(t, 100.0, got[0].Close)
	require.Equal(t, 100.1, got[0].High)
}

func TestBarStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := makeBars("TQQQ", 1000, 100)
	require.NoError(t, store.InsertBulk(ctx, bars))

	err := store.InsertBulk(ctx, bars)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBarStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := makeBars("TQQQ", 1000, 100)
	bars = append(bars, bars[0])

	err := store.InsertBulk(ctx, bars)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySymbol(ctx, "TQQQ")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestBarStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, makeBars("TQQQ", 0, 100, 101, 102, 103, 104)))

	got, err := store.GetByTimeRange(ctx, "TQQQ", 60_000, 180_000)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, int64(60_000), got[0].TimestampMs)
	require.Equal(t, int64(180_000), got[2].TimestampMs)
}

func TestBarStore_SymbolIsolation(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, makeBars("TQQQ", 1000, 100)))
	require.NoError(t, store.InsertBulk(ctx, makeBars("SOXL", 1000, 30)))

	got, err := store.GetBySymbol(ctx, "SOXL")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 30.0, got[0].Close)
}

func TestBarStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	require.ErrorIs(t, store.InsertBulk(ctx, []*domain.Bar{nil}), storage.ErrInvalidInput)
	require.ErrorIs(t, store.InsertBulk(ctx, []*domain.Bar{{}}), storage.ErrInvalidInput)
	require.NoError(t, store.InsertBulk(ctx, nil))
}
