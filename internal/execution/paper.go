package execution

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"boundary-trader/internal/domain"
)

// PaperAdapter simulates execution in memory. Orders never touch a venue;
// every order fills at the signal price.
type PaperAdapter struct {
	mu     sync.Mutex
	orders []Order
	fail   error
}

func NewPaperAdapter() *PaperAdapter { return &PaperAdapter{} }

func (p *PaperAdapter) Name() string { return "paper" }

// PlaceOrder records the order and reports it filled at the signal price.
func (p *PaperAdapter) PlaceOrder(_ context.Context, symbol string, sig domain.TradeSignal) (*Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail != nil {
		return nil, p.fail
	}

	order := Order{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Side:     sig.Side,
		Price:    sig.Price,
		Quantity: sig.Quantity,
		Status:   StatusFilled,
		PlacedAt: time.Now().UTC(),
	}
	p.orders = append(p.orders, order)
	return &order, nil
}

// Orders returns a copy of everything placed so far.
func (p *PaperAdapter) Orders() []Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Order, len(p.orders))
	copy(out, p.orders)
	return out
}

// FailWith makes subsequent PlaceOrder calls return err; nil restores
// normal behavior.
func (p *PaperAdapter) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

var _ Adapter = (*PaperAdapter)(nil)
