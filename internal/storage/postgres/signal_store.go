package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
)

// SignalStore is a PostgreSQL implementation of storage.SignalStore.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new PostgreSQL signal store.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

const signalColumns = `run_id, seq, timestamp_ms, side, price, quantity, level`

// Insert adds a single trade signal. Returns ErrDuplicateKey if (run_id, seq) exists.
func (s *SignalStore) Insert(ctx context.Context, sig *domain.TradeSignal) error {
	if sig == nil || sig.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_signals (` + signalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		sig.RunID, sig.Seq, sig.TimestampMs, string(sig.Side), sig.Price, sig.Quantity, sig.Level,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert signal: %w", err)
	}

	return nil
}

// InsertBulk adds multiple signals in a single transaction. The whole batch
// is rolled back on any duplicate.
func (s *SignalStore) InsertBulk(ctx context.Context, signals []*domain.TradeSignal) error {
	if len(signals) == 0 {
		return nil
	}
	for _, sig := range signals {
		if sig == nil || sig.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trade_signals (` + signalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, sig := range signals {
		_, err := tx.Exec(ctx, query,
			sig.RunID, sig.Seq, sig.TimestampMs, string(sig.Side), sig.Price, sig.Quantity, sig.Level,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert signal seq %d: %w", sig.Seq, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByRunID retrieves all signals for a run, ordered by seq ASC.
func (s *SignalStore) GetByRunID(ctx context.Context, runID string) ([]*domain.TradeSignal, error) {
	query := `SELECT ` + signalColumns + ` FROM trade_signals WHERE run_id = $1 ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get signals by run id: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeSignal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		result = append(result, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}

	return result, nil
}

func scanSignal(row pgx.Row) (*domain.TradeSignal, error) {
	var (
		sig  domain.TradeSignal
		side string
	)
	err := row.Scan(&sig.RunID, &sig.Seq, &sig.TimestampMs, &side, &sig.Price, &sig.Quantity, &sig.Level)
	if err != nil {
		return nil, err
	}
	sig.Side = domain.Side(side)
	return &sig, nil
}

var _ storage.SignalStore = (*SignalStore)(nil)
