package domain

// Position is the single open long position of a run.
// The profit ladder is frozen at entry time and never recomputed while held.
type Position struct {
	EntryPrice   float64   // fill price of the entry
	EntryLevel   int       // 1-based build-ladder level that triggered the entry
	Quantity     float64   // held quantity
	EntryDate    string    // calendar date of the entry bar (YYYY-MM-DD)
	EntryHour    int       // session hour of the entry bar
	EntryBarIdx  int       // index of the entry bar within the run
	ProfitLadder []float64 // exit prices captured at entry, ascending
}
