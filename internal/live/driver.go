package live

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"boundary-trader/internal/domain"
	"boundary-trader/internal/engine"
	"boundary-trader/internal/execution"
	"boundary-trader/internal/observability"
	"boundary-trader/internal/storage"
)

// BarSource supplies closed bars newer than a given timestamp, in
// chronological order.
type BarSource interface {
	RecentBars(ctx context.Context, symbol string, sinceMs int64) ([]*domain.Bar, error)
}

// Driver polls a bar source and steps one engine per closed bar. Signals
// go to the execution adapter and the signal store. A bar's evaluation is
// atomic; cancellation is honored between ticks.
type Driver struct {
	symbol  string
	eng     *engine.Engine
	src     BarSource
	adapter execution.Adapter
	confirm execution.ConfirmPolicy
	signals storage.SignalStore
	logger  *log.Logger

	pollInterval time.Duration
	lastSeenMs   int64
}

// DriverOption customizes driver construction.
type DriverOption func(*Driver)

// WithConfirmPolicy replaces the default assume-filled policy.
func WithConfirmPolicy(p execution.ConfirmPolicy) DriverOption {
	return func(d *Driver) { d.confirm = p }
}

// WithSignalStore persists every emitted signal.
func WithSignalStore(s storage.SignalStore) DriverOption {
	return func(d *Driver) { d.signals = s }
}

// WithPollInterval overrides the default 10s tick.
func WithPollInterval(interval time.Duration) DriverOption {
	return func(d *Driver) { d.pollInterval = interval }
}

// NewDriver wires a live session around an already-constructed engine,
// which may carry a resumed position.
func NewDriver(symbol string, eng *engine.Engine, src BarSource, adapter execution.Adapter, logger *log.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		symbol:       symbol,
		eng:          eng,
		src:          src,
		adapter:      adapter,
		confirm:      execution.AssumeFilled{},
		logger:       logger,
		pollInterval: 10 * time.Second,
		lastSeenMs:   -1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run polls until the context is canceled. The first tick runs immediately.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		if err := d.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logf("tick failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick pulls new bars once and evaluates them. Exported so callers can
// drive the loop themselves.
func (d *Driver) Tick(ctx context.Context) error {
	start := time.Now()
	defer func() {
		observability.RecordPoll(time.Since(start).Seconds())
	}()

	bars, err := d.src.RecentBars(ctx, d.symbol, d.lastSeenMs)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}

	for _, bar := range bars {
		if bar == nil || bar.TimestampMs <= d.lastSeenMs {
			continue // already evaluated
		}

		emitted, err := d.eng.Step(*bar)
		if err != nil {
			observability.RecordRejectedBar()
			d.logf("bar at %d rejected: %v", bar.TimestampMs, err)
			continue
		}
		d.lastSeenMs = bar.TimestampMs

		state := d.eng.State()
		observability.RecordBar(bar.TimestampMs, state.Capital, state.Position != nil)

		for i := range emitted {
			d.handleSignal(ctx, &emitted[i])
		}
	}

	return nil
}

// handleSignal executes and persists one signal. Order failures are logged
// and counted but do not rewind the engine: capital already reflects the
// signal, and the operator has to reconcile manually.
func (d *Driver) handleSignal(ctx context.Context, sig *domain.TradeSignal) {
	observability.RecordSignal(string(sig.Side))
	d.logf("signal %s %d: %s %.4f @ %.2f (level %d)",
		sig.RunID, sig.Seq, sig.Side, sig.Quantity, sig.Price, sig.Level)

	order, err := d.adapter.PlaceOrder(ctx, d.symbol, *sig)
	if err != nil {
		observability.RecordOrderError()
		d.logf("order for signal %d failed, engine state NOT rolled back: %v", sig.Seq, err)
	} else if ok, err := d.confirm.Confirm(ctx, order); err != nil {
		d.logf("confirm order %s: %v", order.ID, err)
	} else if !ok {
		d.logf("order %s not confirmed filled", order.ID)
	}

	if d.signals != nil {
		if err := d.signals.Insert(ctx, sig); err != nil {
			d.logf("persist signal %d: %v", sig.Seq, err)
		}
	}
}

func (d *Driver) logf(format string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}

// FeedSource adapts a push-based bar channel to the pull-based BarSource.
// Bars arriving between polls are buffered.
type FeedSource struct {
	mu     sync.Mutex
	buf    []*domain.Bar
	ch     <-chan domain.Bar
	cancel chan struct{}
	once   sync.Once
}

// NewFeedSource starts buffering from the channel until Stop.
func NewFeedSource(ch <-chan domain.Bar) *FeedSource {
	s := &FeedSource{
		ch:     ch,
		cancel: make(chan struct{}),
	}
	go s.collect()
	return s
}

func (s *FeedSource) collect() {
	for {
		select {
		case bar, ok := <-s.ch:
			if !ok {
				return
			}
			s.mu.Lock()
			s.buf = append(s.buf, &bar)
			s.mu.Unlock()
		case <-s.cancel:
			return
		}
	}
}

// RecentBars drains the buffer, returning bars newer than sinceMs.
func (s *FeedSource) RecentBars(_ context.Context, _ string, sinceMs int64) ([]*domain.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Bar
	for _, b := range s.buf {
		if b.TimestampMs > sinceMs {
			out = append(out, b)
		}
	}
	s.buf = s.buf[:0]
	return out, nil
}

// Stop ends buffering.
func (s *FeedSource) Stop() {
	s.once.Do(func() { close(s.cancel) })
}

var _ BarSource = (*FeedSource)(nil)
