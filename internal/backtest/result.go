package backtest

import "boundary-trader/internal/domain"

// BarRow is the per-bar evaluation trace of a run, one row per input bar.
type BarRow struct {
	TimestampMs int64
	Close       float64
	High        float64
	Low         float64
	Average     float64
	Capital     float64
	HasPosition bool
	Action      string // "buy", "sell" or empty
}

// Result holds everything a finished run produced.
type Result struct {
	Summary domain.RunSummary
	Signals []domain.TradeSignal
	Rows    []BarRow
}
