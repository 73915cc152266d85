package repository

import (
	"context"

	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
)

// NoopOrderSink drops intents; used when backend.sink is none.
type NoopOrderSink struct{}

func (NoopOrderSink) Publish(context.Context, string, []models.OrderIntent) error { return nil }
func (NoopOrderSink) Close() error                                                { return nil }

// NoopDecisionStore drops audit records.
type NoopDecisionStore struct{}

func (NoopDecisionStore) StoreBatch(context.Context, []models.DecisionRecord) error { return nil }
func (NoopDecisionStore) Health(context.Context) error                              { return nil }
func (NoopDecisionStore) Close() error                                              { return nil }

var (
	_ repository.OrderSink     = NoopOrderSink{}
	_ repository.DecisionStore = NoopDecisionStore{}
)
