package repository

import (
	"context"
	"time"

	"FinSim/internal/domain/models"
)

// Market is the read-only view of one market a participant decides on.
// PriceAt must answer for every tick in the active lookback window.
type Market interface {
	ID() string
	CurrentTick() int
	CurrentPrice() float64
	PriceAt(tick int) (float64, error)
	FundamentalPrice() float64
	BestBuyQuote() (float64, bool)
	BestSellQuote() (float64, bool)
}

// Portfolio exposes the participant's holdings snapshot.
type Portfolio interface {
	Position(marketID string) int
	Cash() float64
}

// Exchange is the host-side market: it accepts intents and advances time.
type Exchange interface {
	Market
	Submit(agentID string, intents []models.OrderIntent) ([]models.Fill, error)
	Advance()
	Account(agentID string) Portfolio
	OpenAccount(agentID string, cash float64, position int)
	Snapshot() models.MarketSnapshot
}

// OrderSink receives every intent emitted in a decision.
type OrderSink interface {
	Publish(ctx context.Context, agentID string, intents []models.OrderIntent) error
	Close() error
}

// DecisionStore persists decision audit records.
type DecisionStore interface {
	StoreBatch(ctx context.Context, records []models.DecisionRecord) error
	Health(ctx context.Context) error
	Close() error
}

// StateStore keeps snapshots of each agent's tracked orders and guards the
// session against concurrent stepping.
type StateStore interface {
	SaveTracked(ctx context.Context, agentID string, orders []models.TrackedOrder) error
	LoadTracked(ctx context.Context, agentID string) ([]models.TrackedOrder, error)
	TryLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name string) error
}

// Broadcaster fans intents out to live subscribers.
type Broadcaster interface {
	Broadcast(v interface{})
}

type Metrics interface {
	RecordDecision(marketID, outcome string)
	RecordSkip(reason string)
	RecordOrder(marketID string, side models.Side)
	RecordCancels(marketID string, n int)
	RecordFill(marketID string, volume int)
	RecordMarket(marketID string, price, fundamental float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
