// Package execution sends trade signals to an order venue. The engine
// assumes every order fills at the signal price; the ConfirmPolicy makes
// that assumption explicit and replaceable.
package execution

import (
	"context"
	"time"

	"boundary-trader/internal/domain"
)

// OrderStatus is the venue-side state of a placed order.
type OrderStatus string

const (
	StatusFilled   OrderStatus = "filled"
	StatusPending  OrderStatus = "pending"
	StatusRejected OrderStatus = "rejected"
)

// Order is a normalized view of an order derived from one trade signal.
type Order struct {
	ID       string
	Symbol   string
	Side     domain.Side
	Price    float64
	Quantity float64
	Status   OrderStatus
	PlacedAt time.Time
}

// Adapter is the minimal surface the live driver needs to execute signals.
type Adapter interface {
	Name() string
	PlaceOrder(ctx context.Context, symbol string, sig domain.TradeSignal) (*Order, error)
}

// ConfirmPolicy decides whether a placed order counts as executed at the
// signal price. The strategy itself never waits for venue fills.
type ConfirmPolicy interface {
	Confirm(ctx context.Context, order *Order) (bool, error)
}

// AssumeFilled treats every successfully placed order as filled. This is
// the historical behavior; a stricter policy would poll the venue.
type AssumeFilled struct{}

func (AssumeFilled) Confirm(_ context.Context, order *Order) (bool, error) {
	return order != nil && order.Status != StatusRejected, nil
}

var _ ConfirmPolicy = AssumeFilled{}
