package repository

import (
	"context"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
	pkgkafka "FinSim/pkg/kafka"
	"FinSim/pkg/util"

	"github.com/shopspring/decimal"
)

// OrderMessage is the wire form of one intent on the orders topic.
// Prices travel as decimals snapped to the venue tick size.
type OrderMessage struct {
	Kind     models.IntentKind `json:"kind"`
	OrderID  string            `json:"order_id"`
	AgentID  string            `json:"agent_id"`
	MarketID string            `json:"market_id"`
	Side     models.Side       `json:"side,omitempty"`
	Price    *decimal.Decimal  `json:"price,omitempty"`
	Volume   int               `json:"volume,omitempty"`
	TTL      int               `json:"ttl,omitempty"`
	Tick     int               `json:"tick"`
}

// KafkaOrderSink implements OrderSink for Kafka, keyed by agent so one
// agent's cancels and orders stay ordered within a partition.
type KafkaOrderSink struct {
	producer *pkgkafka.Producer
	topic    string
	tickSize float64
}

// NewKafkaOrderSink creates Kafka order sink.
func NewKafkaOrderSink(producer *pkgkafka.Producer, topic string, tickSize float64) *KafkaOrderSink {
	return &KafkaOrderSink{producer: producer, topic: topic, tickSize: tickSize}
}

func (s *KafkaOrderSink) Publish(ctx context.Context, agentID string, intents []models.OrderIntent) error {
	if len(intents) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(intents))
	for _, in := range intents {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(agentID),
			Value: s.toMessage(in),
		})
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}

func (s *KafkaOrderSink) toMessage(in models.OrderIntent) OrderMessage {
	msg := OrderMessage{Kind: in.Kind}
	switch {
	case in.New != nil:
		o := in.New
		px := util.RoundToTick(o.Price, s.tickSize, o.Side == models.SideBuy)
		msg.OrderID, msg.AgentID, msg.MarketID = o.ID, o.AgentID, o.MarketID
		msg.Side, msg.Price, msg.Volume, msg.TTL, msg.Tick = o.Side, &px, o.Volume, o.TTL, o.Tick
	case in.Cancel != nil:
		c := in.Cancel
		msg.OrderID, msg.AgentID, msg.MarketID, msg.Tick = c.OrderID, c.AgentID, c.MarketID, c.Tick
	}
	return msg
}

func (s *KafkaOrderSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

var _ repository.OrderSink = (*KafkaOrderSink)(nil)
