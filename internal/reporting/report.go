package reporting

import (
	"time"

	"boundary-trader/internal/domain"
)

// Report is the printable view of one finished run.
type Report struct {
	GeneratedAt time.Time
	Run         domain.RunSummary

	// Signal table, in emission order.
	Signals []SignalRow

	// Round trips reconstructed from the signal log. A trailing open
	// entry appears with no exit fields.
	Trades []TradeRow
}

// SignalRow is one emitted signal, formatted for display.
type SignalRow struct {
	Seq      int
	Time     string // session time, YYYY-MM-DD HH:MM:SS
	Side     string
	Price    float64
	Quantity float64
	Level    int
}

// TradeRow is one buy/sell round trip.
type TradeRow struct {
	EntryTime  string
	EntryPrice float64
	ExitTime   string
	ExitPrice  float64
	ExitLevel  int
	Quantity   float64
	ProfitPct  float64
	Closed     bool
}
