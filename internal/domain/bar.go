package domain

// Bar represents one OHLC price sample for a fixed time interval.
// Bars are immutable once ingested and ordered by timestamp.
type Bar struct {
	Symbol      string  // instrument identifier
	TimestampMs int64   // interval start, Unix timestamp in milliseconds
	Open        float64 // first traded price in the interval
	High        float64 // highest traded price in the interval
	Low         float64 // lowest traded price in the interval
	Close       float64 // last traded price in the interval
	Volume      float64 // traded volume; carried but unused by the engine
}

// Supported bar intervals.
const (
	Interval1Min  = "1min"
	Interval5Min  = "5min"
	Interval15Min = "15min"
	Interval30Min = "30min"
	Interval60Min = "60min"
)
