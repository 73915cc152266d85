package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"FinSim/internal/domain/models"
	domrepo "FinSim/internal/domain/repository"
	"FinSim/internal/repository"
	"FinSim/internal/services/afcn"
	"FinSim/pkg/logger"
)

var (
	ErrSessionBusy  = errors.New("session is stepping elsewhere")
	ErrUnknownAgent = errors.New("unknown agent")
)

const (
	sessionLock    = "session"
	sessionLockTTL = 5 * time.Minute
)

// Summary accumulates what a session produced.
type Summary struct {
	Ticks     int            `json:"ticks"`
	Decisions int            `json:"decisions"`
	Orders    int            `json:"orders"`
	Cancels   int            `json:"cancels"`
	Fills     int            `json:"fills"`
	Skipped   map[string]int `json:"skipped"`
	Price     float64        `json:"price"`
	Tick      int            `json:"tick"`
}

func (s *Summary) add(o Summary) {
	s.Ticks += o.Ticks
	s.Decisions += o.Decisions
	s.Orders += o.Orders
	s.Cancels += o.Cancels
	s.Fills += o.Fills
	if s.Skipped == nil {
		s.Skipped = make(map[string]int)
	}
	for k, v := range o.Skipped {
		s.Skipped[k] += v
	}
	s.Price, s.Tick = o.Price, o.Tick
}

// AgentInfo is the public view of one hosted agent.
type AgentInfo struct {
	ID       string      `json:"id"`
	Params   afcn.Params `json:"params"`
	Markets  []string    `json:"markets"`
	Cash     float64     `json:"cash"`
	Position int         `json:"position"`
	Tracked  int         `json:"tracked"`
}

type member struct {
	mu      sync.Mutex
	agent   *afcn.Agent
	markets []string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

func WithSink(s domrepo.OrderSink) SessionOption {
	return func(x *Session) {
		if s != nil {
			x.sink = s
		}
	}
}

func WithDecisionStore(s domrepo.DecisionStore) SessionOption {
	return func(x *Session) {
		if s != nil {
			x.store = s
		}
	}
}

func WithStateStore(s domrepo.StateStore) SessionOption {
	return func(x *Session) { x.state = s }
}

func WithBroadcaster(b domrepo.Broadcaster) SessionOption {
	return func(x *Session) { x.hub = b }
}

func WithMetrics(m domrepo.Metrics) SessionOption {
	return func(x *Session) { x.metrics = m }
}

func WithSessionLogger(l *logger.Logger) SessionOption {
	return func(x *Session) {
		if l != nil {
			x.log = l
		}
	}
}

// WithSchedule sets the session length and the pause between ticks of Run.
func WithSchedule(steps int, interval time.Duration) SessionOption {
	return func(x *Session) {
		x.steps = steps
		x.interval = interval
	}
}

// Session hosts agents on one exchange and drives the clock. Each agent is
// guarded by its own mutex; ticks are serialized by the state store lock and
// by an in-process mutex.
type Session struct {
	market   domrepo.Exchange
	members  []*member
	byID     map[string]*member
	sink     domrepo.OrderSink
	store    domrepo.DecisionStore
	state    domrepo.StateStore
	hub      domrepo.Broadcaster
	metrics  domrepo.Metrics
	log      *logger.Logger
	rng      *rand.Rand
	steps    int
	interval time.Duration

	tickMu sync.Mutex
	sumMu  sync.Mutex
	total  Summary
}

// NewSession funds every agent on the market and returns the host.
func NewSession(market domrepo.Exchange, agents []AgentSpec, seed int64, opts ...SessionOption) (*Session, error) {
	s := &Session{
		market: market,
		byID:   make(map[string]*member, len(agents)),
		sink:   repository.NoopOrderSink{},
		store:  repository.NoopDecisionStore{},
		log:    logger.Nop(),
		rng:    rand.New(rand.NewSource(seed)),
		steps:  1000,
		total:  Summary{Skipped: make(map[string]int)},
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, spec := range agents {
		id := spec.Agent.ID()
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("duplicate agent id %s", id)
		}
		m := &member{agent: spec.Agent, markets: spec.Markets}
		s.members = append(s.members, m)
		s.byID[id] = m
		market.OpenAccount(id, spec.Cash, spec.Position)
	}
	return s, nil
}

// Restore reloads each agent's tracked orders from the state store.
func (s *Session) Restore(ctx context.Context) error {
	if s.state == nil {
		return nil
	}
	for _, m := range s.members {
		orders, err := s.state.LoadTracked(ctx, m.agent.ID())
		if err != nil {
			return fmt.Errorf("restore %s: %w", m.agent.ID(), err)
		}
		m.mu.Lock()
		m.agent.Restore(orders)
		m.mu.Unlock()
	}
	return nil
}

// Step runs n ticks synchronously.
func (s *Session) Step(ctx context.Context, n int) (Summary, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return Summary{}, err
	}
	defer release()

	var sum Summary
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.add(s.tick(ctx))
	}
	return sum, nil
}

// Run steps the configured number of ticks, pausing between ticks when an
// interval is set, until done or ctx is cancelled.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	s.log.Info("session started",
		logger.Int("steps", s.steps),
		logger.Int("agents", len(s.members)),
		logger.String("market_id", s.market.ID()),
	)
	for i := 0; i < s.steps; i++ {
		if s.interval > 0 && i > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(s.interval):
			}
		}
		part, err := s.Step(ctx, 1)
		sum.add(part)
		if err != nil {
			if errors.Is(err, ErrSessionBusy) {
				s.log.Warn("tick skipped, session busy", logger.Int("tick", s.market.CurrentTick()))
				continue
			}
			return sum, err
		}
	}
	s.log.Info("session finished",
		logger.Int("ticks", sum.Ticks),
		logger.Int("orders", sum.Orders),
		logger.Int("fills", sum.Fills),
		logger.Float64("price", sum.Price),
	)
	return sum, nil
}

func (s *Session) acquire(ctx context.Context) (func(), error) {
	if !s.tickMu.TryLock() {
		return nil, ErrSessionBusy
	}
	if s.state == nil {
		return s.tickMu.Unlock, nil
	}
	ok, err := s.state.TryLock(ctx, sessionLock, sessionLockTTL)
	if err != nil {
		s.tickMu.Unlock()
		return nil, fmt.Errorf("session lock: %w", err)
	}
	if !ok {
		s.tickMu.Unlock()
		return nil, ErrSessionBusy
	}
	return func() {
		if err := s.state.Unlock(context.Background(), sessionLock); err != nil {
			s.log.Warn("session unlock failed", logger.Error(err))
		}
		s.tickMu.Unlock()
	}, nil
}

// tick gives every agent one turn in shuffled order, then advances time.
func (s *Session) tick(ctx context.Context) Summary {
	tick := s.market.CurrentTick()
	sum := Summary{Ticks: 1, Skipped: make(map[string]int)}
	records := make([]models.DecisionRecord, 0, len(s.members))

	for _, i := range s.rng.Perm(len(s.members)) {
		m := s.members[i]
		id := m.agent.ID()

		start := time.Now()
		m.mu.Lock()
		decisions := m.agent.Trace([]domrepo.Market{s.market}, s.market.Account(id))
		m.mu.Unlock()
		s.observeLatency("decide", start)

		var intents []models.OrderIntent
		for _, d := range decisions {
			intents = append(intents, d.Intents...)
			records = append(records, s.record(id, d))
			s.account(&sum, d)
			if d.Err != nil {
				s.log.Warn("decision skipped",
					logger.String("agent_id", id),
					logger.String("market_id", d.MarketID),
					logger.Int("tick", d.Tick),
					logger.String("reason", afcn.Reason(d.Err)),
					logger.Error(d.Err),
				)
			}
		}
		if len(intents) == 0 {
			continue
		}

		fills, err := s.market.Submit(id, intents)
		if err != nil {
			s.recordError("submit")
			s.log.Warn("market rejected intents", logger.String("agent_id", id), logger.Error(err))
		}
		for _, f := range fills {
			if s.ApplyFill(f) == nil && f.AgentID == id {
				sum.Fills++
			}
		}
		if s.metrics != nil {
			for _, f := range fills {
				if f.AgentID == id {
					s.metrics.RecordFill(f.MarketID, f.Volume)
				}
			}
		}

		if err := s.sink.Publish(ctx, id, intents); err != nil {
			s.recordError("sink")
			s.log.Warn("order sink publish failed", logger.String("agent_id", id), logger.Error(err))
		}
		if s.hub != nil {
			s.hub.Broadcast(models.IntentEvent{AgentID: id, Tick: tick, Intents: intents, Fills: fills})
		}
	}

	start := time.Now()
	if err := s.store.StoreBatch(ctx, records); err != nil {
		s.recordError("decision_store")
		s.log.Warn("decision audit write failed", logger.Int("records", len(records)), logger.Error(err))
	}
	s.observeLatency("audit", start)
	s.snapshot(ctx)

	if s.metrics != nil {
		s.metrics.RecordMarket(s.market.ID(), s.market.CurrentPrice(), s.market.FundamentalPrice())
	}
	s.market.Advance()
	sum.Price, sum.Tick = s.market.CurrentPrice(), s.market.CurrentTick()

	s.sumMu.Lock()
	s.total.add(sum)
	s.sumMu.Unlock()
	return sum
}

func (s *Session) account(sum *Summary, d afcn.Decision) {
	sum.Decisions++
	sum.Cancels += d.Cancels
	outcome := "no_order"
	switch {
	case d.Err != nil:
		outcome = "skipped"
		sum.Skipped[afcn.Reason(d.Err)]++
	case d.Proposal.Volume > 0:
		outcome = "order"
		sum.Orders++
	}
	if s.metrics == nil {
		return
	}
	s.metrics.RecordDecision(d.MarketID, outcome)
	if d.Err != nil {
		s.metrics.RecordSkip(afcn.Reason(d.Err))
	}
	if d.Cancels > 0 {
		s.metrics.RecordCancels(d.MarketID, d.Cancels)
	}
	if d.Proposal.Volume > 0 {
		s.metrics.RecordOrder(d.MarketID, d.Proposal.Side)
	}
}

func (s *Session) record(agentID string, d afcn.Decision) models.DecisionRecord {
	r := models.DecisionRecord{
		AgentID:   agentID,
		MarketID:  d.MarketID,
		Tick:      d.Tick,
		Price:     d.Price,
		Beliefs:   d.Beliefs,
		Cancels:   d.Cancels,
		CreatedAt: time.Now().UTC(),
	}
	switch {
	case d.Err != nil:
		r.Skipped, r.Reason = true, afcn.Reason(d.Err)
	case d.Proposal.Volume > 0:
		r.Side, r.OrderPx, r.OrderVol = d.Proposal.Side, d.Proposal.Price, d.Proposal.Volume
	default:
		r.Reason = "no_volume"
	}
	return r
}

func (s *Session) snapshot(ctx context.Context) {
	if s.state == nil {
		return
	}
	for _, m := range s.members {
		m.mu.Lock()
		orders := m.agent.TrackedOrders()
		m.mu.Unlock()
		if err := s.state.SaveTracked(ctx, m.agent.ID(), orders); err != nil {
			s.recordError("state_store")
			s.log.Warn("tracked order snapshot failed", logger.String("agent_id", m.agent.ID()), logger.Error(err))
		}
	}
}

// ApplyFill routes an execution report to its agent.
func (s *Session) ApplyFill(f models.Fill) error {
	m, ok := s.byID[f.AgentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, f.AgentID)
	}
	m.mu.Lock()
	m.agent.OnFill(f)
	m.mu.Unlock()
	return nil
}

// Agents lists hosted agents sorted by ID.
func (s *Session) Agents() []AgentInfo {
	out := make([]AgentInfo, 0, len(s.members))
	for _, m := range s.members {
		id := m.agent.ID()
		acc := s.market.Account(id)
		m.mu.Lock()
		info := AgentInfo{
			ID:       id,
			Params:   m.agent.Params(),
			Markets:  m.markets,
			Cash:     acc.Cash(),
			Position: acc.Position(s.market.ID()),
			Tracked:  len(m.agent.TrackedOrders()),
		}
		m.mu.Unlock()
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TrackedOrders returns the agent's last snapshot from the state store, or
// its live list when no store is configured.
func (s *Session) TrackedOrders(ctx context.Context, agentID string) ([]models.TrackedOrder, error) {
	m, ok := s.byID[agentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, agentID)
	}
	if s.state != nil {
		return s.state.LoadTracked(ctx, agentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agent.TrackedOrders(), nil
}

// Market returns the current market snapshot.
func (s *Session) Market() models.MarketSnapshot {
	return s.market.Snapshot()
}

// Totals returns everything stepped so far.
func (s *Session) Totals() Summary {
	s.sumMu.Lock()
	defer s.sumMu.Unlock()
	out := s.total
	out.Skipped = make(map[string]int, len(s.total.Skipped))
	for k, v := range s.total.Skipped {
		out.Skipped[k] = v
	}
	return out
}

func (s *Session) observeLatency(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}

func (s *Session) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}
