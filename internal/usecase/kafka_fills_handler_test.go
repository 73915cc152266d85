package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"FinSim/internal/domain/models"
)

type fillRecorder struct {
	fills []models.Fill
	err   error
}

func (r *fillRecorder) ApplyFill(f models.Fill) error {
	if r.err != nil {
		return r.err
	}
	r.fills = append(r.fills, f)
	return nil
}

func TestKafkaFillsHandlerRoutesFills(t *testing.T) {
	rec := &fillRecorder{}
	h := NewKafkaFillsHandler("finsim.fills", rec, nil)
	if h.Topic() != "finsim.fills" {
		t.Fatalf("topic = %s", h.Topic())
	}
	b, _ := json.Marshal(models.Fill{OrderID: "o1", AgentID: "a", MarketID: "m", Side: models.SideBuy, Price: 100, Volume: 2})
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(rec.fills) != 1 || rec.fills[0].Volume != 2 || rec.fills[0].OrderID != "o1" {
		t.Fatalf("fills = %+v", rec.fills)
	}
}

func TestKafkaFillsHandlerRejectsBadMessages(t *testing.T) {
	rec := &fillRecorder{}
	h := NewKafkaFillsHandler("fills", rec, nil)
	if err := h.Handle(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
	b, _ := json.Marshal(models.Fill{OrderID: "o1", AgentID: "a", Volume: 0})
	if err := h.Handle(context.Background(), b); err == nil {
		t.Fatalf("expected invalid fill error")
	}
	if len(rec.fills) != 0 {
		t.Fatalf("bad messages reached the agent")
	}
}

func TestKafkaFillsHandlerPropagatesRoutingErrors(t *testing.T) {
	rec := &fillRecorder{err: ErrUnknownAgent}
	h := NewKafkaFillsHandler("fills", rec, nil)
	b, _ := json.Marshal(models.Fill{OrderID: "o1", AgentID: "ghost", Volume: 1})
	if err := h.Handle(context.Background(), b); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestSessionApplyFillUnknownAgent(t *testing.T) {
	h := newHarness(t, 8)
	if err := h.session.ApplyFill(models.Fill{AgentID: "ghost", OrderID: "x", Volume: 1}); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}
