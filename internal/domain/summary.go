package domain

// RunSummary captures the outcome of one strategy run.
// Corresponds to the runs table.
type RunSummary struct {
	RunID  string // UUID assigned at run start
	Symbol string // instrument the run traded

	Config StrategyConfig // parameter set the run used

	BarCount    int     // bars processed
	TradeCount  int     // signals emitted (buys + sells)
	FinalValue  float64 // available capital at run end; open position not marked to market
	TotalReturn float64 // (final_value - initial_capital) / initial_capital * 100
	OpenAtEnd   bool    // a position was still held when the bar stream ended

	StartedAtMs  int64 // timestamp of the first bar
	FinishedAtMs int64 // timestamp of the last bar
}
