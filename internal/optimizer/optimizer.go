package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/travel"
)

// Strategy names.
const (
	StrategyHeuristic = "heuristic"
	StrategyGreedy    = "greedy"
)

// DefaultBeamWidth is the number of partial routes the heuristic keeps.
const DefaultBeamWidth = 3

var (
	// ErrNoFeasibleRoute is returned when no ordering satisfies the
	// pickup-before-drop-off constraint.
	ErrNoFeasibleRoute = errors.New("no feasible route")

	// ErrUnknownStrategy is returned by New for unsupported strategy names.
	ErrUnknownStrategy = errors.New("unknown optimizer strategy")
)

// Optimizer computes a visiting order for a set of nodes.
type Optimizer interface {
	// Optimize returns the nodes in visiting order, starting from start.
	Optimize(ctx context.Context, start model.GeoLocation, nodes []VisitNode) ([]VisitNode, error)

	// Name returns the strategy name.
	Name() string
}

// Options configures optimizer construction.
type Options struct {
	BeamWidth int
}

// New builds the optimizer for strategy.
func New(strategy string, est travel.TimeEstimator, opts Options) (Optimizer, error) {
	switch strategy {
	case StrategyHeuristic, "":
		return NewHeuristic(est, opts.BeamWidth), nil
	case StrategyGreedy:
		return NewGreedy(est), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// arrival returns when the agent finishes visiting n after leaving at t
// with the given travel time.
func arrival(n VisitNode, t, travelMinutes float64) float64 {
	at := t + travelMinutes
	if n.Type == Restaurant {
		at = math.Max(at, n.PrepMinutes)
	}
	return at
}

// Schedule returns the arrival minute at each node of route.
func Schedule(ctx context.Context, est travel.TimeEstimator, start model.GeoLocation, route []VisitNode) ([]float64, error) {
	arrivals := make([]float64, len(route))
	loc := start
	t := 0.0
	for i, n := range route {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := est.EstimateMinutes(loc, n.Location)
		if err != nil {
			return nil, fmt.Errorf("estimate travel to %s: %w", n.VisitID, err)
		}
		t = arrival(n, t, d)
		arrivals[i] = t
		loc = n.Location
	}
	return arrivals, nil
}
