package domain

// Side identifies the direction of a trade signal.
type Side string

// Side constants.
const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TimeoutLevel is the sentinel level recorded on a timeout exit,
// distinct from the 1-based profit-ladder levels.
const TimeoutLevel = 5

// TradeSignal is one emitted buy or sell event.
// Signals are append-only and ordered by emission.
type TradeSignal struct {
	RunID       string  // run that emitted the signal
	Seq         int     // position in the run's trade log, 0-based
	TimestampMs int64   // timestamp of the bar that triggered the signal
	Side        Side    // buy or sell
	Price       float64 // execution price
	Quantity    float64 // executed quantity
	Level       int     // 1-based ladder level, or TimeoutLevel on forced close
}
