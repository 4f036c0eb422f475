package backtest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/engine"
	"boundary-trader/internal/storage"
)

// ErrNoBars is returned when the requested symbol/range holds no data.
var ErrNoBars = errors.New("no bars for symbol in range")

// Runner replays stored bars through a strategy engine and persists the
// emitted signals and the run summary.
type Runner struct {
	bars    storage.BarStore
	signals storage.SignalStore
	runs    storage.RunStore
	logger  *log.Logger
}

// NewRunner creates a new backtest runner.
func NewRunner(bars storage.BarStore, signals storage.SignalStore, runs storage.RunStore, logger *log.Logger) *Runner {
	return &Runner{
		bars:    bars,
		signals: signals,
		runs:    runs,
		logger:  logger,
	}
}

// Run executes one backtest over all stored bars of a symbol.
func (r *Runner) Run(ctx context.Context, symbol string, cfg domain.StrategyConfig, opts ...engine.Option) (*Result, error) {
	bars, err := r.bars.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	return r.replay(ctx, symbol, bars, cfg, opts...)
}

// RunRange executes one backtest over bars within [from, to] (inclusive).
func (r *Runner) RunRange(ctx context.Context, symbol string, from, to int64, cfg domain.StrategyConfig, opts ...engine.Option) (*Result, error) {
	bars, err := r.bars.GetByTimeRange(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	return r.replay(ctx, symbol, bars, cfg, opts...)
}

func (r *Runner) replay(ctx context.Context, symbol string, bars []*domain.Bar, cfg domain.StrategyConfig, opts ...engine.Option) (*Result, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	startedAt := time.Now().UnixMilli()
	rows := make([]BarRow, 0, len(bars))
	var signals []domain.TradeSignal

	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		avg := eng.Average(bar.Close)
		emitted, err := eng.Step(*bar)
		if err != nil {
			return nil, fmt.Errorf("bar at %d: %w", bar.TimestampMs, err)
		}

		action := ""
		if len(emitted) > 0 {
			action = string(emitted[len(emitted)-1].Side)
		}
		signals = append(signals, emitted...)

		rows = append(rows, BarRow{
			TimestampMs: bar.TimestampMs,
			Close:       bar.Close,
			High:        bar.High,
			Low:         bar.Low,
			Average:     avg,
			Capital:     eng.State().Capital,
			HasPosition: eng.State().Position != nil,
			Action:      action,
		})
	}

	summary := eng.Summary(symbol, startedAt, time.Now().UnixMilli())

	if err := r.persist(ctx, summary, signals); err != nil {
		return nil, err
	}

	if r.logger != nil {
		r.logger.Printf("run %s: %d bars, %d trades, final value %.2f (%.2f%%), open at end: %v",
			summary.RunID, summary.BarCount, summary.TradeCount,
			summary.FinalValue, summary.TotalReturn, summary.OpenAtEnd)
	}

	return &Result{Summary: summary, Signals: signals, Rows: rows}, nil
}

func (r *Runner) persist(ctx context.Context, summary domain.RunSummary, signals []domain.TradeSignal) error {
	if r.runs != nil {
		if err := r.runs.Insert(ctx, &summary); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
	}
	if r.signals != nil && len(signals) > 0 {
		batch := make([]*domain.TradeSignal, len(signals))
		for i := range signals {
			batch[i] = &signals[i]
		}
		if err := r.signals.InsertBulk(ctx, batch); err != nil {
			return fmt.Errorf("persist signals: %w", err)
		}
	}
	return nil
}
