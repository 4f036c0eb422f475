package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
)

// RunStore is a PostgreSQL implementation of storage.RunStore.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new PostgreSQL run store.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

const runColumns = `run_id, symbol, initial_capital, build_levels, profit_levels,
		max_position_ratio, buy_drop, sell_rise, level_spread,
		bar_count, trade_count, final_value, total_return, open_at_end,
		started_at_ms, finished_at_ms`

// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.RunSummary) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Symbol,
		r.Config.InitialCapital, r.Config.BuildLevels, r.Config.ProfitLevels,
		r.Config.MaxPositionRatio, r.Config.BuyDrop, r.Config.SellRise, r.Config.LevelSpread,
		r.BarCount, r.TradeCount, r.FinalValue, r.TotalReturn, r.OpenAtEnd,
		r.StartedAtMs, r.FinishedAtMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}

	return r, nil
}

// GetBySymbol retrieves all runs for a symbol, ordered by start time ASC.
func (s *RunStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE symbol = $1 ORDER BY started_at_ms ASC`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get runs by symbol: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return result, nil
}

func scanRun(row pgx.Row) (*domain.RunSummary, error) {
	var r domain.RunSummary
	err := row.Scan(
		&r.RunID, &r.Symbol,
		&r.Config.InitialCapital, &r.Config.BuildLevels, &r.Config.ProfitLevels,
		&r.Config.MaxPositionRatio, &r.Config.BuyDrop, &r.Config.SellRise, &r.Config.LevelSpread,
		&r.BarCount, &r.TradeCount, &r.FinalValue, &r.TotalReturn, &r.OpenAtEnd,
		&r.StartedAtMs, &r.FinishedAtMs,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

var _ storage.RunStore = (*RunStore)(nil)
