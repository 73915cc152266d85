package repository

import (
	"context"
	"encoding/json"
	"testing"

	"FinSim/internal/domain/models"
	pkgkafka "FinSim/pkg/kafka"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaOrderSinkPublishesKeyedDecimalPrices(t *testing.T) {
	w := &fakeWriter{}
	sink := NewKafkaOrderSink(pkgkafka.NewProducerWithWriter(w, "none", nil), "orders", 0.01)

	intents := []models.OrderIntent{
		models.CancelIntent(models.CancelOrder{OrderID: "old", AgentID: "a-1", MarketID: "m", Tick: 7}),
		models.NewOrderIntent(models.NewOrder{ID: "n", AgentID: "a-1", MarketID: "m", Side: models.SideBuy, Price: 101.239, Volume: 4, TTL: 20, Tick: 7}),
		models.NewOrderIntent(models.NewOrder{ID: "s", AgentID: "a-1", MarketID: "m", Side: models.SideSell, Price: 101.231, Volume: 2, TTL: 20, Tick: 7}),
	}
	if err := sink.Publish(context.Background(), "a-1", intents); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(w.msgs))
	}
	for _, m := range w.msgs {
		if string(m.Key) != "a-1" || m.Topic != "orders" {
			t.Fatalf("key=%q topic=%q", m.Key, m.Topic)
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(w.msgs[0].Value, &raw); err != nil {
		t.Fatalf("decode cancel: %v", err)
	}
	if raw["kind"] != "cancel" || raw["order_id"] != "old" {
		t.Fatalf("cancel message = %v", raw)
	}
	if _, ok := raw["price"]; ok {
		t.Fatalf("cancel must not carry a price")
	}

	var buy, sell OrderMessage
	if err := json.Unmarshal(w.msgs[1].Value, &buy); err != nil {
		t.Fatalf("decode buy: %v", err)
	}
	if err := json.Unmarshal(w.msgs[2].Value, &sell); err != nil {
		t.Fatalf("decode sell: %v", err)
	}
	if buy.Price == nil || buy.Price.String() != "101.23" || buy.Volume != 4 || buy.TTL != 20 {
		t.Fatalf("buy message = %+v", buy)
	}
	if sell.Price == nil || sell.Price.String() != "101.24" {
		t.Fatalf("sell price = %v, want 101.24", sell.Price)
	}
}

func TestKafkaOrderSinkSkipsEmpty(t *testing.T) {
	w := &fakeWriter{}
	sink := NewKafkaOrderSink(pkgkafka.NewProducerWithWriter(w, "none", nil), "orders", 0.01)
	if err := sink.Publish(context.Background(), "a", nil); err != nil || len(w.msgs) != 0 {
		t.Fatalf("empty publish wrote %d messages, err %v", len(w.msgs), err)
	}
}
