// Package engine implements the boundary trading strategy core: a
// deterministic, I/O-free state machine that consumes one OHLC bar at a
// time and emits buy/sell signals while tracking account capital.
package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"boundary-trader/internal/domain"
)

// Bar precondition violations. A rejected bar leaves the run state untouched
// and the run must not proceed past it.
var (
	ErrNonPositivePrice = errors.New("bar has a non-positive price")
	ErrInvertedRange    = errors.New("bar high is below bar low")
	ErrOutOfOrderBar    = errors.New("bar timestamp is not after the previous bar")
)

// Session gates, in the instrument's native session clock.
// Entries are restricted to the early session to avoid overnight exposure;
// forced closes run in the daytime window away from the date boundary.
const (
	entryHourMax        = 2
	forcedCloseHourFrom = 4
	forcedCloseHourTo   = 22
)

// Engine drives one run of the boundary strategy. It is single-threaded:
// bars are evaluated strictly in order, one at a time, and each evaluation
// is atomic with respect to capital and the trade log.
type Engine struct {
	cfg   domain.StrategyConfig
	clock SessionClock
	avg   *AverageTracker
	state *RunState
	runID string
}

// Option customizes engine construction.
type Option func(*Engine)

// WithLocation sets the session time zone used to derive dates and hours.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.clock = NewSessionClock(loc) }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// WithPosition seeds the run with a previously open position, used when
// resuming a live session. The position's entry bar index is rebased to -1
// so it is exitable from the first bar of the new run.
func WithPosition(pos domain.Position) Option {
	return func(e *Engine) {
		pos.EntryBarIdx = -1
		e.state.Position = &pos
	}
}

// New creates an engine for one run. The configuration is validated once
// here; Step never fails on configuration afterwards.
func New(cfg domain.StrategyConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:   cfg,
		clock: NewSessionClock(nil),
		avg:   NewAverageTracker(DefaultAverageWindow),
		state: newRunState(cfg),
		runID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RunID returns the identifier signals of this run are tagged with.
func (e *Engine) RunID() string {
	return e.runID
}

// State returns the run state for display or persistence.
// The engine remains the sole writer.
func (e *Engine) State() *RunState {
	return e.state
}

// Config returns the run's parameter set.
func (e *Engine) Config() domain.StrategyConfig {
	return e.cfg
}

// Average returns the trailing average the next bar would be evaluated
// against, given that bar's close.
func (e *Engine) Average(currentClose float64) float64 {
	return e.avg.Average(currentClose)
}

// Step evaluates one bar and returns the signals it emitted, in emission
// order. At most one buy and one sell are emitted per bar, and a position
// is never closed on the bar that opened it. A precondition violation
// rejects the bar without touching the run state.
func (e *Engine) Step(bar domain.Bar) ([]domain.TradeSignal, error) {
	if err := e.validate(bar); err != nil {
		return nil, err
	}

	date := e.clock.Date(bar.TimestampMs)
	hour := e.clock.Hour(bar.TimestampMs)
	e.state.resetDailyBudget(date, e.cfg.InitialCapital)

	ma := e.avg.Average(bar.Close)
	buildPrices := BuildLadder(ma, e.cfg)
	profitPrices := ProfitLadder(ma, e.cfg)

	var emitted []domain.TradeSignal

	if e.state.Position == nil && hour <= entryHourMax {
		if sig, ok := e.tryEnter(bar, date, hour, buildPrices, profitPrices); ok {
			emitted = append(emitted, sig)
		}
	}

	if pos := e.state.Position; pos != nil && e.state.barIndex > pos.EntryBarIdx {
		if sig, ok := e.tryExit(bar, hour, pos); ok {
			emitted = append(emitted, sig)
		}
	}

	e.avg.Push(bar.Close)
	e.state.barIndex++
	e.state.lastBarMs = bar.TimestampMs

	return emitted, nil
}

// validate rejects malformed or out-of-order bars before any state change.
func (e *Engine) validate(bar domain.Bar) error {
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		return ErrNonPositivePrice
	}
	if bar.High < bar.Low {
		return ErrInvertedRange
	}
	if e.state.lastBarMs >= 0 && bar.TimestampMs <= e.state.lastBarMs {
		return ErrOutOfOrderBar
	}
	return nil
}

// tryEnter scans the build ladder from the level nearest the average
// downwards. The first level the bar's range reached decides the bar:
// either the entry commits there, or (on zero quantity or insufficient
// capital) the bar's entry opportunity is dropped entirely. Deeper levels
// are never tried once a level matched.
func (e *Engine) tryEnter(bar domain.Bar, date string, hour int, buildPrices, profitPrices []float64) (domain.TradeSignal, bool) {
	for levelIdx, levelPrice := range buildPrices {
		if levelPrice < bar.Low {
			continue
		}

		// Limit order modeling: a gap below the level fills at the
		// more favorable low.
		fill := levelPrice
		if bar.Low < fill {
			fill = bar.Low
		}

		maxCapital := e.state.DailyCapital
		if e.cfg.InitialCapital < maxCapital {
			maxCapital = e.cfg.InitialCapital
		}
		qty := maxCapital * e.cfg.MaxPositionRatio / fill

		if qty <= 0 || qty*fill > e.state.Capital {
			return domain.TradeSignal{}, false
		}

		ladder := make([]float64, len(profitPrices))
		copy(ladder, profitPrices)

		e.state.Capital -= qty * fill
		e.state.Position = &domain.Position{
			EntryPrice:   fill,
			EntryLevel:   levelIdx + 1,
			Quantity:     qty,
			EntryDate:    date,
			EntryHour:    hour,
			EntryBarIdx:  e.state.barIndex,
			ProfitLadder: ladder,
		}
		return e.emit(bar.TimestampMs, domain.SideBuy, fill, qty, levelIdx+1), true
	}
	return domain.TradeSignal{}, false
}

// tryExit first scans the position's frozen profit ladder from the level
// nearest the average upwards, exiting at the first level the bar's high
// reached, at that level's exact price. If no level fired, the timeout rule
// force-closes at the bar's close during the daytime window, but only when
// the close is above the entry price: losses are never forcibly realized.
func (e *Engine) tryExit(bar domain.Bar, hour int, pos *domain.Position) (domain.TradeSignal, bool) {
	for levelIdx, target := range pos.ProfitLadder {
		if bar.High >= target {
			e.state.Capital += pos.Quantity * target
			e.state.Position = nil
			return e.emit(bar.TimestampMs, domain.SideSell, target, pos.Quantity, levelIdx+1), true
		}
	}

	if hour >= forcedCloseHourFrom && hour < forcedCloseHourTo {
		profitPct := (bar.Close - pos.EntryPrice) / pos.EntryPrice * 100
		if profitPct > 0 {
			e.state.Capital += pos.Quantity * bar.Close
			e.state.Position = nil
			return e.emit(bar.TimestampMs, domain.SideSell, bar.Close, pos.Quantity, domain.TimeoutLevel), true
		}
	}

	return domain.TradeSignal{}, false
}

// emit appends a signal to the trade log and returns it.
func (e *Engine) emit(tsMs int64, side domain.Side, price, qty float64, level int) domain.TradeSignal {
	sig := domain.TradeSignal{
		RunID:       e.runID,
		Seq:         len(e.state.TradeLog),
		TimestampMs: tsMs,
		Side:        side,
		Price:       price,
		Quantity:    qty,
		Level:       level,
	}
	e.state.TradeLog = append(e.state.TradeLog, sig)
	return sig
}

// Summary assembles the run summary at any point of the run.
func (e *Engine) Summary(symbol string, startedAtMs, finishedAtMs int64) domain.RunSummary {
	return domain.RunSummary{
		RunID:        e.runID,
		Symbol:       symbol,
		Config:       e.cfg,
		BarCount:     e.state.barIndex,
		TradeCount:   len(e.state.TradeLog),
		FinalValue:   e.state.Capital,
		TotalReturn:  (e.state.Capital - e.cfg.InitialCapital) / e.cfg.InitialCapital * 100,
		OpenAtEnd:    e.state.Position != nil,
		StartedAtMs:  startedAtMs,
		FinishedAtMs: finishedAtMs,
	}
}
