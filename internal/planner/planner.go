package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rickgao/delivery-planner/internal/metrics"
	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/optimizer"
	"github.com/rickgao/delivery-planner/internal/store"
	"github.com/rickgao/delivery-planner/internal/travel"
)

// ErrUnknownUser is returned when an order references, or a route visits,
// a customer or restaurant the request does not describe.
var ErrUnknownUser = errors.New("unknown user")

// Publisher receives every plan the planner produces.
type Publisher interface {
	Publish(plan *model.DeliveryPlan)
}

// Request describes one planning job.
type Request struct {
	AgentID string
	Start   model.GeoLocation
	Orders  []model.Order

	// Customers and Restaurants override the entities embedded in Orders
	// when their IDs match.
	Customers   []model.Customer
	Restaurants []model.Restaurant

	// Strategy selects the optimizer. Empty uses the planner default.
	Strategy string
}

// Config configures a Planner.
type Config struct {
	Strategy  string
	BeamWidth int
}

// Planner produces, stores and publishes delivery plans.
type Planner struct {
	est             travel.TimeEstimator
	engines         map[string]*Engine
	defaultStrategy string

	store     store.Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional Planner dependencies.
type Option func(*Planner)

// WithStore persists every plan to s.
func WithStore(s store.Store) Option {
	return func(p *Planner) { p.store = s }
}

// WithPublisher sends every plan to pub.
func WithPublisher(pub Publisher) Option {
	return func(p *Planner) { p.publisher = pub }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithEngine registers an engine under strategy, replacing the built-in one.
func WithEngine(strategy string, e *Engine) Option {
	return func(p *Planner) { p.engines[strategy] = e }
}

// WithClock overrides the plan timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates a planner with an engine for every built-in strategy.
func New(est travel.TimeEstimator, cfg Config, opts ...Option) (*Planner, error) {
	if cfg.Strategy == "" {
		cfg.Strategy = optimizer.StrategyHeuristic
	}

	p := &Planner{
		est:             est,
		engines:         make(map[string]*Engine, 2),
		defaultStrategy: cfg.Strategy,
		logger:          slog.Default(),
		now:             time.Now,
	}
	for _, name := range []string{optimizer.StrategyHeuristic, optimizer.StrategyGreedy} {
		opt, err := optimizer.New(name, est, optimizer.Options{BeamWidth: cfg.BeamWidth})
		if err != nil {
			return nil, err
		}
		p.engines[name] = NewEngine(opt)
	}
	for _, o := range opts {
		o(p)
	}

	if _, ok := p.engines[p.defaultStrategy]; !ok {
		return nil, fmt.Errorf("%w: %q", optimizer.ErrUnknownStrategy, p.defaultStrategy)
	}
	p.logger = p.logger.With("component", "planner")
	return p, nil
}

// DefaultStrategy returns the strategy used for requests that name none.
func (p *Planner) DefaultStrategy() string {
	return p.defaultStrategy
}

// PlanRoute validates req, routes its orders and returns the finished plan.
func (p *Planner) PlanRoute(ctx context.Context, req Request) (*model.DeliveryPlan, error) {
	start := time.Now()

	strategy := req.Strategy
	if strategy == "" {
		strategy = p.defaultStrategy
	}

	// Only known strategies become metric labels
	label := strategy
	if _, ok := p.engines[strategy]; !ok {
		label = metrics.StrategyUnknown
	}

	plan, err := p.plan(ctx, req, strategy)
	if err != nil {
		metrics.RecordPlan(label, resultFor(err), time.Since(start), 0)
		p.logger.Warn("plan failed",
			"agent_id", req.AgentID,
			"strategy", strategy,
			"orders", len(req.Orders),
			"error", err,
		)
		return nil, err
	}

	if p.store != nil {
		if err := p.store.Save(ctx, plan); err != nil {
			metrics.RecordPlan(strategy, metrics.ResultError, time.Since(start), 0)
			return nil, fmt.Errorf("save plan: %w", err)
		}
	}
	if p.publisher != nil {
		p.publisher.Publish(plan)
	}

	metrics.RecordPlan(strategy, metrics.ResultOK, time.Since(start), len(plan.Stops))
	p.logger.Info("plan created",
		"plan_id", plan.ID,
		"agent_id", plan.AgentID,
		"strategy", strategy,
		"stops", len(plan.Stops),
		"total_minutes", plan.TotalMinutes,
		"duration", time.Since(start),
	)
	return plan, nil
}

func (p *Planner) plan(ctx context.Context, req Request, strategy string) (*model.DeliveryPlan, error) {
	engine, ok := p.engines[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", optimizer.ErrUnknownStrategy, strategy)
	}

	if err := req.Start.Validate(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	if err := validateOrders(req.Orders); err != nil {
		return nil, err
	}

	dir := newDirectory(req)
	orders, err := dir.resolve(req.Orders)
	if err != nil {
		return nil, err
	}
	// Parties from the explicit lists have not been checked yet
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}

	route, err := engine.Route(ctx, req.Start, orders)
	if err != nil {
		return nil, err
	}

	arrivals, err := optimizer.Schedule(ctx, p.est, req.Start, route)
	if err != nil {
		return nil, err
	}

	stops := make([]model.Stop, len(route))
	for i, n := range route {
		stop, err := dir.stop(n)
		if err != nil {
			return nil, err
		}
		stop.ArrivalMinutes = arrivals[i]
		stops[i] = stop
	}

	plan := &model.DeliveryPlan{
		ID:        uuid.New(),
		AgentID:   req.AgentID,
		Strategy:  strategy,
		Start:     req.Start,
		Stops:     stops,
		CreatedAt: p.now().UTC(),
	}
	if n := len(arrivals); n > 0 {
		plan.TotalMinutes = arrivals[n-1]
	}
	return plan, nil
}

// Get returns a stored plan.
func (p *Planner) Get(ctx context.Context, id uuid.UUID) (*model.DeliveryPlan, error) {
	if p.store == nil {
		return nil, store.ErrNotFound
	}
	return p.store.Get(ctx, id)
}

// ListByAgent returns the agent's stored plans newest first.
func (p *Planner) ListByAgent(ctx context.Context, agentID string, limit int) ([]*model.DeliveryPlan, error) {
	if p.store == nil {
		return nil, nil
	}
	return p.store.ListByAgent(ctx, agentID, limit)
}

// Assign plans req from the agent's current location and attaches the
// result to the agent.
func (p *Planner) Assign(ctx context.Context, agent *model.Agent, req Request) (*model.DeliveryPlan, error) {
	req.AgentID = agent.ID
	req.Start = agent.Location

	plan, err := p.PlanRoute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("assign agent %s: %w", agent.ID, err)
	}
	agent.Plan = plan
	return plan, nil
}

func validateOrders(orders []model.Order) error {
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return err
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("%w: order %s: duplicate id", model.ErrInvalidOrder, o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}

func resultFor(err error) string {
	if errors.Is(err, optimizer.ErrNoFeasibleRoute) {
		return metrics.ResultInfeasible
	}
	return metrics.ResultError
}
