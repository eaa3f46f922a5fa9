package optimizer

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/travel"
)

// Heuristic is a beam-search optimizer.
type Heuristic struct {
	est   travel.TimeEstimator
	width int
}

// NewHeuristic creates a beam-search optimizer. A width below 1 uses
// DefaultBeamWidth.
func NewHeuristic(est travel.TimeEstimator, width int) *Heuristic {
	if width < 1 {
		width = DefaultBeamWidth
	}
	return &Heuristic{est: est, width: width}
}

func (h *Heuristic) Name() string { return StrategyHeuristic }

// routeState is a partial route.
type routeState struct {
	location model.GeoLocation
	route    []int
	visited  []bool
	time     float64 // arrival at the last node
	estimate float64 // time plus heuristic remainder
}

// Optimize runs the beam search until no partial route remains and returns
// the fastest complete route seen.
func (h *Heuristic) Optimize(ctx context.Context, start model.GeoLocation, nodes []VisitNode) ([]VisitNode, error) {
	pairs := pairIndex(nodes)

	beam := []*routeState{{
		location: start,
		visited:  make([]bool, len(nodes)),
	}}

	var best []int
	bestTime := math.MaxFloat64
	found := false

	for len(beam) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var next []*routeState
		for _, st := range beam {
			if len(st.route) == len(nodes) {
				if st.time < bestTime {
					bestTime = st.time
					best = st.route
					found = true
				}
				continue
			}

			for i, n := range nodes {
				if st.visited[i] {
					continue
				}
				if n.Type == Customer && (pairs[i] < 0 || !st.visited[pairs[i]]) {
					continue
				}

				d, err := h.est.EstimateMinutes(st.location, n.Location)
				if err != nil {
					return nil, fmt.Errorf("estimate travel to %s: %w", n.VisitID, err)
				}
				at := arrival(n, st.time, d)

				visited := slices.Clone(st.visited)
				visited[i] = true

				remaining, err := h.nearestUnvisited(n.Location, nodes, visited)
				if err != nil {
					return nil, err
				}

				next = append(next, &routeState{
					location: n.Location,
					route:    append(slices.Clip(st.route), i),
					visited:  visited,
					time:     at,
					estimate: at + remaining,
				})
			}
		}

		slices.SortStableFunc(next, func(a, b *routeState) int {
			switch {
			case a.estimate < b.estimate:
				return -1
			case a.estimate > b.estimate:
				return 1
			default:
				return 0
			}
		})
		if len(next) > h.width {
			next = next[:h.width]
		}
		beam = next
	}

	if !found {
		return nil, ErrNoFeasibleRoute
	}

	route := make([]VisitNode, len(best))
	for i, idx := range best {
		route[i] = nodes[idx]
	}
	return route, nil
}

// nearestUnvisited returns the travel time from loc to the closest node not
// yet visited, or 0 when every node has been visited.
func (h *Heuristic) nearestUnvisited(loc model.GeoLocation, nodes []VisitNode, visited []bool) (float64, error) {
	nearest := math.Inf(1)
	for i, n := range nodes {
		if visited[i] {
			continue
		}
		d, err := h.est.EstimateMinutes(loc, n.Location)
		if err != nil {
			return 0, fmt.Errorf("estimate travel to %s: %w", n.VisitID, err)
		}
		nearest = math.Min(nearest, d)
	}
	if math.IsInf(nearest, 1) {
		return 0, nil
	}
	return nearest, nil
}
