package engine

// DefaultAverageWindow is the trailing close window of the production strategy.
const DefaultAverageWindow = 14

// AverageTracker maintains the trailing mean of the last N closes,
// excluding the bar currently being evaluated.
type AverageTracker struct {
	window int
	closes []float64
}

// NewAverageTracker creates a tracker over the given window.
// Non-positive windows default to DefaultAverageWindow.
func NewAverageTracker(window int) *AverageTracker {
	if window <= 0 {
		window = DefaultAverageWindow
	}
	return &AverageTracker{window: window}
}

// Average returns the trailing mean for the bar whose close is currentClose.
// While fewer than window closes have been observed the current bar's own
// close is returned verbatim; this degenerate warm-up value shifts ladder
// placement for the first bars of a run and is relied upon downstream.
func (t *AverageTracker) Average(currentClose float64) float64 {
	if len(t.closes) < t.window {
		return currentClose
	}

	var sum float64
	for _, c := range t.closes[len(t.closes)-t.window:] {
		sum += c
	}
	return sum / float64(t.window)
}

// Push records a bar's close after the bar has been evaluated.
func (t *AverageTracker) Push(close float64) {
	t.closes = append(t.closes, close)
}

// Count returns the number of closes observed so far.
func (t *AverageTracker) Count() int {
	return len(t.closes)
}
