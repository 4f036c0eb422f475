package storage

import (
	"context"

	"boundary-trader/internal/domain"
)

// BarStore provides access to OHLC bar storage.
type BarStore interface {
	// InsertBulk adds multiple bars. Fails the entire batch on a
	// duplicate (symbol, timestamp_ms).
	InsertBulk(ctx context.Context, bars []*domain.Bar) error

	// GetBySymbol retrieves all bars for a symbol, ordered by timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Bar, error)

	// GetByTimeRange retrieves bars for a symbol within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.Bar, error)
}

// SignalStore provides access to trade signal storage.
type SignalStore interface {
	// Insert adds a new signal. Returns ErrDuplicateKey if (run_id, seq) exists.
	Insert(ctx context.Context, s *domain.TradeSignal) error

	// InsertBulk adds multiple signals atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, signals []*domain.TradeSignal) error

	// GetByRunID retrieves all signals of a run, ordered by seq ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.TradeSignal, error)
}

// RunStore provides access to run summary storage.
type RunStore interface {
	// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunSummary) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunSummary, error)

	// GetBySymbol retrieves all runs for a symbol, ordered by start time ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.RunSummary, error)
}
