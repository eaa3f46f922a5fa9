package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/travel"
)

// Greedy always moves to the feasible node with the earliest arrival.
type Greedy struct {
	est travel.TimeEstimator
}

// NewGreedy creates a greedy optimizer.
func NewGreedy(est travel.TimeEstimator) *Greedy {
	return &Greedy{est: est}
}

func (g *Greedy) Name() string { return StrategyGreedy }

// Optimize builds the route one node at a time until every customer has
// been served.
func (g *Greedy) Optimize(ctx context.Context, start model.GeoLocation, nodes []VisitNode) ([]VisitNode, error) {
	customers := make(map[string]struct{})
	for _, n := range nodes {
		if n.Type == Customer {
			customers[n.OrderID] = struct{}{}
		}
	}

	pickedUp := make(map[string]bool)
	delivered := make(map[string]bool)

	route := make([]VisitNode, 0, len(nodes))
	loc := start
	t := 0.0

	for len(delivered) < len(customers) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := -1
		earliest := math.MaxFloat64
		for i, n := range nodes {
			if !visitable(n, pickedUp, delivered) {
				continue
			}
			d, err := g.est.EstimateMinutes(loc, n.Location)
			if err != nil {
				return nil, fmt.Errorf("estimate travel to %s: %w", n.VisitID, err)
			}
			if at := arrival(n, t, d); at < earliest {
				earliest = at
				best = i
			}
		}
		if best < 0 {
			return nil, ErrNoFeasibleRoute
		}

		n := nodes[best]
		route = append(route, n)
		loc = n.Location
		t = earliest
		if n.Type == Restaurant {
			pickedUp[n.OrderID] = true
		} else {
			delivered[n.OrderID] = true
		}
	}

	return route, nil
}

func visitable(n VisitNode, pickedUp, delivered map[string]bool) bool {
	if n.Type == Restaurant {
		return !pickedUp[n.OrderID]
	}
	return !delivered[n.OrderID] && pickedUp[n.OrderID]
}
