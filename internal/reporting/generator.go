package reporting

import (
	"context"
	"fmt"
	"time"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/storage"
)

// Generator produces run reports from stored data.
type Generator struct {
	runStore    storage.RunStore
	signalStore storage.SignalStore
	loc         *time.Location
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. Times are formatted in loc
// (nil means UTC), matching the session clock the run was evaluated in.
func NewGenerator(runStore storage.RunStore, signalStore storage.SignalStore, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		runStore:    runStore,
		signalStore: signalStore,
		loc:         loc,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles the report for one run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	signals, err := g.signalStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}

	report := &Report{
		GeneratedAt: g.now(),
		Run:         *run,
	}

	for _, sig := range signals {
		report.Signals = append(report.Signals, SignalRow{
			Seq:      sig.Seq,
			Time:     g.formatTime(sig.TimestampMs),
			Side:     string(sig.Side),
			Price:    sig.Price,
			Quantity: sig.Quantity,
			Level:    sig.Level,
		})
	}

	report.Trades = g.pairTrades(signals)

	return report, nil
}

// pairTrades folds the alternating buy/sell log into round trips.
func (g *Generator) pairTrades(signals []*domain.TradeSignal) []TradeRow {
	var trades []TradeRow
	var open *TradeRow

	for _, sig := range signals {
		switch sig.Side {
		case domain.SideBuy:
			open = &TradeRow{
				EntryTime:  g.formatTime(sig.TimestampMs),
				EntryPrice: sig.Price,
				Quantity:   sig.Quantity,
			}
		case domain.SideSell:
			if open == nil {
				continue
			}
			open.ExitTime = g.formatTime(sig.TimestampMs)
			open.ExitPrice = sig.Price
			open.ExitLevel = sig.Level
			open.ProfitPct = (sig.Price - open.EntryPrice) / open.EntryPrice * 100
			open.Closed = true
			trades = append(trades, *open)
			open = nil
		}
	}

	if open != nil {
		trades = append(trades, *open)
	}

	return trades
}

func (g *Generator) formatTime(tsMs int64) string {
	return time.UnixMilli(tsMs).In(g.loc).Format("2006-01-02 15:04:05")
}
