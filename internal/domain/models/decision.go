package models

import "time"

// Beliefs captures the per-invocation quantities behind a decision.
// They are recomputed on every call and never persisted by the agent.
type Beliefs struct {
	FundamentalWeight    float64 `json:"fundamental_weight"`
	ChartWeight          float64 `json:"chart_weight"`
	NoiseWeight          float64 `json:"noise_weight"`
	TemporalWindow       int     `json:"temporal_window"`
	TemporalRiskAversion float64 `json:"temporal_risk_aversion"`
	ExpectedPrice        float64 `json:"expected_price"`
	ExpectedVolatility   float64 `json:"expected_volatility"`
	SatisfactionPrice    float64 `json:"satisfaction_price"`
	MinBuyPrice          float64 `json:"min_buy_price"`
	MaxSellPrice         float64 `json:"max_sell_price"`
}

// DecisionRecord is the audit row written for each agent/market/tick.
type DecisionRecord struct {
	AgentID   string    `json:"agent_id"`
	MarketID  string    `json:"market_id"`
	Tick      int       `json:"tick"`
	Price     float64   `json:"price"`
	Beliefs   Beliefs   `json:"beliefs"`
	Cancels   int       `json:"cancels"`
	Side      Side      `json:"side,omitempty"`
	OrderPx   float64   `json:"order_price,omitempty"`
	OrderVol  int       `json:"order_volume,omitempty"`
	Skipped   bool      `json:"skipped"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MarketSnapshot is a serializable view of a market at a tick.
type MarketSnapshot struct {
	MarketID    string   `json:"market_id"`
	Tick        int      `json:"tick"`
	Price       float64  `json:"price"`
	Fundamental float64  `json:"fundamental"`
	BestBuy     *float64 `json:"best_buy,omitempty"`
	BestSell    *float64 `json:"best_sell,omitempty"`
	Volume      int      `json:"volume"`
	Bids        int      `json:"bids"`
	Asks        int      `json:"asks"`
}

// IntentEvent is what live subscribers receive for each agent turn.
type IntentEvent struct {
	AgentID string        `json:"agent_id"`
	Tick    int           `json:"tick"`
	Intents []OrderIntent `json:"intents"`
	Fills   []Fill        `json:"fills,omitempty"`
}
