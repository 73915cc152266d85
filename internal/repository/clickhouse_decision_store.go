package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
)

// Execer is the part of *sql.DB the decision store needs.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PingContext(ctx context.Context) error
}

// DecisionSchema returns the DDL of the decision audit table.
func DecisionSchema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	created_at DateTime64(3),
	agent_id String,
	market_id LowCardinality(String),
	tick UInt32,
	price Float64,
	fundamental_weight Float64,
	chart_weight Float64,
	noise_weight Float64,
	temporal_window UInt32,
	temporal_risk_aversion Float64,
	expected_price Float64,
	expected_volatility Float64,
	satisfaction_price Float64,
	min_buy_price Float64,
	max_sell_price Float64,
	cancels UInt16,
	side LowCardinality(String),
	order_price Float64,
	order_volume Int64,
	skipped UInt8,
	reason LowCardinality(String)
) ENGINE = MergeTree
ORDER BY (market_id, agent_id, tick)`, table)}
}

const decisionColumns = "created_at, agent_id, market_id, tick, price, fundamental_weight, chart_weight, noise_weight, " +
	"temporal_window, temporal_risk_aversion, expected_price, expected_volatility, satisfaction_price, " +
	"min_buy_price, max_sell_price, cancels, side, order_price, order_volume, skipped, reason"

const decisionArity = 21

// ClickHouseDecisionStore implements DecisionStore for ClickHouse.
type ClickHouseDecisionStore struct {
	db        Execer
	table     string
	chunkSize int
}

// NewClickHouseDecisionStore creates ClickHouse decision store.
func NewClickHouseDecisionStore(db Execer, table string, chunkSize int) *ClickHouseDecisionStore {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	return &ClickHouseDecisionStore{db: db, table: table, chunkSize: chunkSize}
}

func (s *ClickHouseDecisionStore) StoreBatch(ctx context.Context, records []models.DecisionRecord) error {
	for start := 0; start < len(records); start += s.chunkSize {
		end := min(start+s.chunkSize, len(records))

		placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", decisionArity), ", ") + ")"
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*decisionArity)
		for _, r := range records[start:end] {
			if r.AgentID == "" || r.MarketID == "" {
				continue
			}
			createdAt := r.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			var skipped uint8
			if r.Skipped {
				skipped = 1
			}
			b := r.Beliefs
			values = append(values, placeholder)
			args = append(args,
				createdAt, r.AgentID, r.MarketID, uint32(r.Tick), r.Price,
				b.FundamentalWeight, b.ChartWeight, b.NoiseWeight,
				uint32(b.TemporalWindow), b.TemporalRiskAversion,
				b.ExpectedPrice, b.ExpectedVolatility, b.SatisfactionPrice,
				b.MinBuyPrice, b.MaxSellPrice,
				uint16(r.Cancels), string(r.Side), r.OrderPx, int64(r.OrderVol),
				skipped, r.Reason,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, decisionColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert %d decisions: %w", len(values), err)
		}
	}
	return nil
}

func (s *ClickHouseDecisionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseDecisionStore) Close() error {
	return nil // Managed by pkg
}

var _ repository.DecisionStore = (*ClickHouseDecisionStore)(nil)
