package models

import "time"

// Side is the direction of a limit order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// IntentKind distinguishes order placements from cancellations.
type IntentKind string

const (
	IntentNew    IntentKind = "new"
	IntentCancel IntentKind = "cancel"
)

// NewOrder is a limit order emitted by a participant.
// Volume is always the positive quantity requested (buy) or offered (sell).
type NewOrder struct {
	ID       string  `json:"id"`
	AgentID  string  `json:"agent_id"`
	MarketID string  `json:"market_id"`
	Side     Side    `json:"side"`
	Price    float64 `json:"price"`
	Volume   int     `json:"volume"`
	TTL      int     `json:"ttl"`  // ticks
	Tick     int     `json:"tick"` // tick at which the order was decided
}

// CancelOrder references a previously emitted NewOrder still outstanding.
type CancelOrder struct {
	OrderID  string `json:"order_id"`
	AgentID  string `json:"agent_id"`
	MarketID string `json:"market_id"`
	Tick     int    `json:"tick"`
}

// OrderIntent is one action produced by a single decision. Exactly one of
// New / Cancel is set, matching Kind.
type OrderIntent struct {
	Kind   IntentKind   `json:"kind"`
	New    *NewOrder    `json:"new,omitempty"`
	Cancel *CancelOrder `json:"cancel,omitempty"`
}

// NewOrderIntent wraps a NewOrder.
func NewOrderIntent(o NewOrder) OrderIntent {
	return OrderIntent{Kind: IntentNew, New: &o}
}

// CancelIntent wraps a CancelOrder.
func CancelIntent(c CancelOrder) OrderIntent {
	return OrderIntent{Kind: IntentCancel, Cancel: &c}
}

// MarketID returns the market the intent targets.
func (i OrderIntent) MarketID() string {
	if i.New != nil {
		return i.New.MarketID
	}
	if i.Cancel != nil {
		return i.Cancel.MarketID
	}
	return ""
}

// TrackedOrder is the participant's belief about one of its outstanding orders.
type TrackedOrder struct {
	Order     NewOrder `json:"order"`
	Remaining int      `json:"remaining"`
}

// Fill is an execution report delivered by the host.
type Fill struct {
	OrderID  string    `json:"order_id"`
	AgentID  string    `json:"agent_id"`
	MarketID string    `json:"market_id"`
	Side     Side      `json:"side"`
	Price    float64   `json:"price"`
	Volume   int       `json:"volume"`
	Tick     int       `json:"tick"`
	At       time.Time `json:"at"`
}
