package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinSim/internal/domain/models"
	domrepo "FinSim/internal/domain/repository"
	pkgkafka "FinSim/pkg/kafka"
)

// FillApplier receives execution reports for hosted agents.
type FillApplier interface {
	ApplyFill(models.Fill) error
}

// KafkaFillsHandler consumes execution reports from an external venue and
// hands them to the agents that own the orders.
type KafkaFillsHandler struct {
	topic   string
	target  FillApplier
	metrics domrepo.Metrics
}

func NewKafkaFillsHandler(topic string, target FillApplier, metrics domrepo.Metrics) *KafkaFillsHandler {
	return &KafkaFillsHandler{topic: topic, target: target, metrics: metrics}
}

func (h *KafkaFillsHandler) Topic() string { return h.topic }

// incoming message schema: models.Fill as JSON
func (h *KafkaFillsHandler) Handle(_ context.Context, b []byte) error {
	var f models.Fill
	if err := json.Unmarshal(b, &f); err != nil {
		h.recordError("fill_unmarshal")
		return err
	}
	if f.OrderID == "" || f.AgentID == "" || f.Volume <= 0 {
		h.recordError("fill_invalid")
		return fmt.Errorf("invalid fill %q for agent %q volume %d", f.OrderID, f.AgentID, f.Volume)
	}
	if !f.At.IsZero() && h.metrics != nil {
		h.metrics.RecordLatency("fill_e2e", time.Since(f.At).Seconds())
	}
	if err := h.target.ApplyFill(f); err != nil {
		h.recordError("fill_route")
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordFill(f.MarketID, f.Volume)
	}
	return nil
}

func (h *KafkaFillsHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*KafkaFillsHandler)(nil)
