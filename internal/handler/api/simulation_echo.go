package api

import (
	"context"
	"errors"

	models "FinSim/internal/domain/models"
	"FinSim/internal/usecase"
	xhttp "FinSim/pkg/http"
	xlogger "FinSim/pkg/logger"
	"FinSim/pkg/util"

	"github.com/labstack/echo/v4"
)

// Simulation is what the HTTP layer needs from the session host.
type Simulation interface {
	Market() models.MarketSnapshot
	Agents() []usecase.AgentInfo
	TrackedOrders(ctx context.Context, agentID string) ([]models.TrackedOrder, error)
	Step(ctx context.Context, n int) (usecase.Summary, error)
	Totals() usecase.Summary
}

// Streamer upgrades a request to a live intent stream.
type Streamer interface {
	Handle(c echo.Context) error
}

const maxOrdersPage = 1000

// SimulationEchoHandler exposes the session over HTTP.
type SimulationEchoHandler struct {
	logger *xlogger.Logger
	sim    Simulation
	stream Streamer
	guard  []echo.MiddlewareFunc
}

// NewSimulationEchoHandler builds the routes; stepGuard wraps only the step
// endpoint, which is the one that mutates the session.
func NewSimulationEchoHandler(logger *xlogger.Logger, sim Simulation, stream Streamer, stepGuard ...echo.MiddlewareFunc) *SimulationEchoHandler {
	return &SimulationEchoHandler{logger: logger, sim: sim, stream: stream, guard: stepGuard}
}

func (h *SimulationEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/market", h.Market)
	g.GET("/agents", h.Agents)
	g.GET("/agents/:id/orders", h.Orders)
	g.GET("/session", h.Session)
	g.POST("/session/step", h.Step, h.guard...)
	if h.stream != nil {
		e.GET("/ws/intents", h.stream.Handle)
	}
}

func (h *SimulationEchoHandler) Market(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sim.Market())
}

func (h *SimulationEchoHandler) Agents(c echo.Context) error {
	agents := h.sim.Agents()
	return xhttp.ListResponse(c, agents, int64(len(agents)))
}

// Orders returns the agent's tracked orders, newest first, capped by ?limit.
func (h *SimulationEchoHandler) Orders(c echo.Context) error {
	req := &models.AgentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	orders, err := h.sim.TrackedOrders(c.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownAgent) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("agent %s not found", req.ID))
		}
		h.logger.Error("tracked orders lookup failed", xlogger.String("agent_id", req.ID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("tracked orders unavailable").WithError(err))
	}

	total := len(orders)
	limit := util.ClampInt(util.ParseIntDefault(c.QueryParam("limit"), maxOrdersPage), 1, maxOrdersPage)
	rows := make([]models.TrackedOrder, 0, min(limit, total))
	for i := total - 1; i >= 0 && len(rows) < limit; i-- {
		rows = append(rows, orders[i])
	}
	return xhttp.PageResponse(c, rows, int64(total), limit)
}

func (h *SimulationEchoHandler) Session(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.sim.Totals())
}

func (h *SimulationEchoHandler) Step(c echo.Context) error {
	req := &models.StepRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sum, err := h.sim.Step(c.Request().Context(), req.Steps)
	if err != nil {
		if errors.Is(err, usecase.ErrSessionBusy) {
			return xhttp.AppErrorResponse(c, xhttp.ConflictError("session is already stepping"))
		}
		h.logger.Error("session step failed", xlogger.Int("steps", req.Steps), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("step failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, sum)
}
