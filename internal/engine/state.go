package engine

import "boundary-trader/internal/domain"

// RunState is the mutable strategy state of one run. Exactly one RunState
// exists per engine and is mutated only by that engine's Step calls; callers
// may read it between steps but must never write to it.
type RunState struct {
	// Capital is the currently available capital. It stays non-negative
	// whenever no position is open: entries are debited only after the
	// cost check against available capital passes.
	Capital float64

	// DailyCapital is the capital ceiling usable for position sizing today.
	// Recomputed once per new calendar date as
	// initial + 0.5 * (capital - initial): only half of cumulative P/L
	// compounds into the next day's risk budget.
	DailyCapital float64

	// Position is the single open position, or nil when flat.
	Position *domain.Position

	// TradeLog is the append-only sequence of emitted signals.
	TradeLog []domain.TradeSignal

	currentDate string // calendar date the daily budget was last reset on
	barIndex    int    // index of the next bar to be evaluated
	lastBarMs   int64  // timestamp of the most recently accepted bar
}

func newRunState(cfg domain.StrategyConfig) *RunState {
	return &RunState{
		Capital:      cfg.InitialCapital,
		DailyCapital: cfg.InitialCapital,
		lastBarMs:    -1,
	}
}

// BarIndex returns the number of bars accepted so far.
func (s *RunState) BarIndex() int {
	return s.barIndex
}

// resetDailyBudget applies the once-per-date risk budget rule.
// It fires on the first accepted bar of each distinct calendar date.
func (s *RunState) resetDailyBudget(date string, initialCapital float64) {
	if date == s.currentDate {
		return
	}
	s.DailyCapital = initialCapital + 0.5*(s.Capital-initialCapital)
	s.currentDate = date
}
