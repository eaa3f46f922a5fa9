package dispatch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/delivery-planner/internal/metrics"
	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/planner"
)

// Assigner plans a request for an agent and attaches the plan to it.
type Assigner interface {
	Assign(ctx context.Context, agent *model.Agent, req planner.Request) (*model.DeliveryPlan, error)
}

// Job is one agent's orders to plan.
type Job struct {
	Agent       model.Agent
	Orders      []model.Order
	Customers   []model.Customer
	Restaurants []model.Restaurant
	Strategy    string
}

// Result is the outcome of one job.
type Result struct {
	AgentID string
	Plan    *model.DeliveryPlan
	Err     error
}

// Summary reports a dispatch cycle. Results are in job order.
type Summary struct {
	Results  []Result
	Planned  int
	Failed   int
	Duration time.Duration
}

// Stats holds totals across every cycle.
type Stats struct {
	Cycles  int64
	Planned int64
	Failed  int64
}

// Config holds dispatcher configuration.
type Config struct {
	Concurrency int           // Max concurrent jobs (default: 8)
	Timeout     time.Duration // Per-job timeout (default: 30s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 8,
		Timeout:     30 * time.Second,
	}
}

// Dispatcher fans planning jobs out over a bounded worker set.
type Dispatcher struct {
	cfg      Config
	assigner Assigner
	logger   *slog.Logger

	cycles  atomic.Int64
	planned atomic.Int64
	failed  atomic.Int64
}

// New creates a new Dispatcher.
func New(cfg Config, assigner Assigner, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Dispatcher{
		cfg:      cfg,
		assigner: assigner,
		logger:   logger.With("component", "dispatcher"),
	}
}

// Dispatch plans every job and waits for all of them.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []Job) Summary {
	start := time.Now()
	results := make([]Result, len(jobs))

	if len(jobs) == 0 {
		d.logger.Debug("no jobs to dispatch")
		return Summary{Results: results}
	}

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)

	var planned, failed atomic.Int64
	for i := range jobs {
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			results[i] = d.run(ctx, jobs[i])
			if results[i].Err != nil {
				d.logger.Warn("failed to plan agent",
					"agent_id", results[i].AgentID,
					"err", results[i].Err,
				)
				failed.Add(1)
				metrics.RecordDispatchJob(metrics.ResultError)
				return nil
			}
			planned.Add(1)
			metrics.RecordDispatchJob(metrics.ResultOK)
			return nil
		})
	}
	_ = g.Wait() // jobs report through results

	summary := Summary{
		Results:  results,
		Planned:  int(planned.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}

	d.cycles.Add(1)
	d.planned.Add(planned.Load())
	d.failed.Add(failed.Load())

	d.logger.Info("dispatch cycle complete",
		"jobs", len(jobs),
		"planned", summary.Planned,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)
	return summary
}

// run plans a single job under its own timeout.
func (d *Dispatcher) run(ctx context.Context, job Job) Result {
	res := Result{AgentID: job.Agent.ID}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	agent := job.Agent
	res.Plan, res.Err = d.assigner.Assign(ctx, &agent, planner.Request{
		Orders:      job.Orders,
		Customers:   job.Customers,
		Restaurants: job.Restaurants,
		Strategy:    job.Strategy,
	})
	return res
}

// Stats returns totals across all cycles.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Cycles:  d.cycles.Load(),
		Planned: d.planned.Load(),
		Failed:  d.failed.Load(),
	}
}
