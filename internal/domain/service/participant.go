package service

import (
	"FinSim/internal/domain/models"
	"FinSim/internal/domain/repository"
)

// Participant is the capability a host needs from a simulated trader.
type Participant interface {
	ID() string
	Decide(markets []repository.Market, portfolio repository.Portfolio) ([]models.OrderIntent, error)
	OnFill(fill models.Fill)
	TrackedOrders() []models.TrackedOrder
}
