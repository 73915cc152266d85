package models

// Requests for the simulation HTTP endpoints.

type StepRequest struct {
	Steps int `json:"steps" default:"1" validate:"gte=1,lte=10000"`
}

type AgentRequest struct {
	ID string `param:"id" validate:"required"`
}
