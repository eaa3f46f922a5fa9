package optimizer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rickgao/delivery-planner/internal/model"
)

// gridEstimator charges one minute per degree of Manhattan distance.
type gridEstimator struct {
	calls int
}

func (g *gridEstimator) EstimateMinutes(from, to model.GeoLocation) (float64, error) {
	g.calls++
	return math.Abs(from.Latitude-to.Latitude) + math.Abs(from.Longitude-to.Longitude), nil
}

// failingEstimator always fails.
type failingEstimator struct{ err error }

func (f failingEstimator) EstimateMinutes(from, to model.GeoLocation) (float64, error) {
	return 0, f.err
}

func at(lat float64) model.GeoLocation {
	return model.GeoLocation{Latitude: lat}
}

func restaurant(id, order string, lat, prep float64) VisitNode {
	return VisitNode{VisitID: id, OrderID: order, Type: Restaurant, Location: at(lat), PrepMinutes: prep}
}

func customer(id, order string, lat float64) VisitNode {
	return VisitNode{VisitID: id, OrderID: order, Type: Customer, Location: at(lat)}
}

func visitIDs(route []VisitNode) []string {
	ids := make([]string, len(route))
	for i, n := range route {
		ids[i] = n.VisitID
	}
	return ids
}

// lineScenario places two orders on a line: customers at 3 and 0,
// restaurants at 5 and 9.
func lineScenario() []VisitNode {
	return []VisitNode{
		restaurant("R1", "O1", 5, 1),
		customer("C1", "O1", 3),
		restaurant("R2", "O2", 9, 1),
		customer("C2", "O2", 0),
	}
}

// prepScenario has a far-off prep time at the nearest restaurant.
func prepScenario() []VisitNode {
	return []VisitNode{
		restaurant("R1", "O1", 1, 30),
		customer("C1", "O1", 3),
		restaurant("R2", "O2", 2, 0),
		customer("C2", "O2", 4),
	}
}

func TestOptimizers(t *testing.T) {
	tests := []struct {
		name      string
		strategy  string
		nodes     []VisitNode
		wantRoute []string
		wantTimes []float64
	}{
		{
			name:      "heuristic single order",
			strategy:  StrategyHeuristic,
			nodes:     []VisitNode{restaurant("R1", "O1", 1, 10), customer("C1", "O1", 2)},
			wantRoute: []string{"R1", "C1"},
			wantTimes: []float64{10, 11},
		},
		{
			name:      "greedy single order",
			strategy:  StrategyGreedy,
			nodes:     []VisitNode{restaurant("R1", "O1", 1, 10), customer("C1", "O1", 2)},
			wantRoute: []string{"R1", "C1"},
			wantTimes: []float64{10, 11},
		},
		{
			name:      "heuristic batches both pickups",
			strategy:  StrategyHeuristic,
			nodes:     lineScenario(),
			wantRoute: []string{"R1", "R2", "C1", "C2"},
			wantTimes: []float64{5, 9, 15, 18},
		},
		{
			name:      "greedy delivers nearest first",
			strategy:  StrategyGreedy,
			nodes:     lineScenario(),
			wantRoute: []string{"R1", "C1", "R2", "C2"},
			wantTimes: []float64{5, 7, 13, 22},
		},
		{
			name:      "greedy waits for preparation",
			strategy:  StrategyGreedy,
			nodes:     prepScenario(),
			wantRoute: []string{"R2", "C2", "R1", "C1"},
			wantTimes: []float64{2, 4, 30, 32},
		},
		{
			name:      "heuristic empty",
			strategy:  StrategyHeuristic,
			nodes:     nil,
			wantRoute: []string{},
			wantTimes: []float64{},
		},
		{
			name:      "greedy empty",
			strategy:  StrategyGreedy,
			nodes:     nil,
			wantRoute: []string{},
			wantTimes: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &gridEstimator{}
			opt, err := New(tt.strategy, est, Options{})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			route, err := opt.Optimize(context.Background(), at(0), tt.nodes)
			if err != nil {
				t.Fatalf("Optimize() error: %v", err)
			}
			if diff := cmp.Diff(tt.wantRoute, visitIDs(route)); diff != "" {
				t.Errorf("route mismatch (-want +got):\n%s", diff)
			}

			times, err := Schedule(context.Background(), est, at(0), route)
			if err != nil {
				t.Fatalf("Schedule() error: %v", err)
			}
			if diff := cmp.Diff(tt.wantTimes, times); diff != "" {
				t.Errorf("schedule mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// mirrorScenario places two orders at equal distance on either side of
// the start, so every choice is tied until the end.
func mirrorScenario() []VisitNode {
	return []VisitNode{
		restaurant("R1", "O1", 1, 0),
		customer("C1", "O1", 1),
		restaurant("R2", "O2", -1, 0),
		customer("C2", "O2", -1),
	}
}

func reversed(nodes []VisitNode) []VisitNode {
	out := make([]VisitNode, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}

func TestOptimizers_TiesKeepInputOrder(t *testing.T) {
	tests := []struct {
		name      string
		opt       func(est *gridEstimator) Optimizer
		nodes     []VisitNode
		wantRoute []string
	}{
		{
			name:      "greedy picks first of equal arrivals",
			opt:       func(est *gridEstimator) Optimizer { return NewGreedy(est) },
			nodes:     mirrorScenario(),
			wantRoute: []string{"R1", "C1", "R2", "C2"},
		},
		{
			name:      "greedy follows reversed input",
			opt:       func(est *gridEstimator) Optimizer { return NewGreedy(est) },
			nodes:     reversed(mirrorScenario()),
			wantRoute: []string{"R2", "C2", "R1", "C1"},
		},
		{
			name:      "beam keeps earlier candidate on equal estimate",
			opt:       func(est *gridEstimator) Optimizer { return NewHeuristic(est, 3) },
			nodes:     mirrorScenario(),
			wantRoute: []string{"R1", "C1", "R2", "C2"},
		},
		{
			name:      "beam follows reversed input",
			opt:       func(est *gridEstimator) Optimizer { return NewHeuristic(est, 3) },
			nodes:     reversed(mirrorScenario()),
			wantRoute: []string{"R2", "C2", "R1", "C1"},
		},
		{
			name:      "wide beam keeps first complete route of equal time",
			opt:       func(est *gridEstimator) Optimizer { return NewHeuristic(est, 10) },
			nodes:     mirrorScenario(),
			wantRoute: []string{"R1", "C1", "R2", "C2"},
		},
		{
			name:      "wide beam reversed",
			opt:       func(est *gridEstimator) Optimizer { return NewHeuristic(est, 10) },
			nodes:     reversed(mirrorScenario()),
			wantRoute: []string{"R2", "C2", "R1", "C1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := tt.opt(&gridEstimator{}).Optimize(context.Background(), at(0), tt.nodes)
			if err != nil {
				t.Fatalf("Optimize() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantRoute, visitIDs(route)); diff != "" {
				t.Errorf("route mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeuristic_PrepScenarioFeasible(t *testing.T) {
	h := NewHeuristic(&gridEstimator{}, 0)

	route, err := h.Optimize(context.Background(), at(0), prepScenario())
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	assertFeasible(t, route, 4)
}

func TestHeuristic_NeverWorseThanWidthOne(t *testing.T) {
	nodes := []VisitNode{
		restaurant("R1", "O1", 4, 0),
		customer("C1", "O1", -3),
		restaurant("R2", "O2", -1, 12),
		customer("C2", "O2", 7),
		restaurant("R3", "O3", 2, 3),
		customer("C3", "O3", 6),
	}
	est := &gridEstimator{}

	total := func(width int) float64 {
		route, err := NewHeuristic(est, width).Optimize(context.Background(), at(0), nodes)
		if err != nil {
			t.Fatalf("Optimize(width=%d) error: %v", width, err)
		}
		assertFeasible(t, route, len(nodes))
		times, err := Schedule(context.Background(), est, at(0), route)
		if err != nil {
			t.Fatalf("Schedule() error: %v", err)
		}
		return times[len(times)-1]
	}

	narrow := total(1)
	wide := total(1000) // wide enough to be exhaustive for three orders
	if wide > narrow {
		t.Errorf("wide beam total = %v, narrow beam total = %v, want wide <= narrow", wide, narrow)
	}
}

func TestOptimizers_NoFeasibleRoute(t *testing.T) {
	// Customer whose restaurant is missing.
	nodes := []VisitNode{
		restaurant("R1", "O1", 1, 0),
		customer("C1", "O1", 2),
		customer("C2", "O2", 3),
	}

	for _, strategy := range []string{StrategyHeuristic, StrategyGreedy} {
		t.Run(strategy, func(t *testing.T) {
			opt, err := New(strategy, &gridEstimator{}, Options{})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			_, err = opt.Optimize(context.Background(), at(0), nodes)
			if !errors.Is(err, ErrNoFeasibleRoute) {
				t.Errorf("Optimize() error = %v, want ErrNoFeasibleRoute", err)
			}
		})
	}
}

func TestOptimizers_EstimatorError(t *testing.T) {
	boom := errors.New("boom")

	for _, strategy := range []string{StrategyHeuristic, StrategyGreedy} {
		t.Run(strategy, func(t *testing.T) {
			opt, err := New(strategy, failingEstimator{err: boom}, Options{})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			_, err = opt.Optimize(context.Background(), at(0), lineScenario())
			if !errors.Is(err, boom) {
				t.Errorf("Optimize() error = %v, want wrapped boom", err)
			}
		})
	}
}

func TestOptimizers_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, strategy := range []string{StrategyHeuristic, StrategyGreedy} {
		t.Run(strategy, func(t *testing.T) {
			opt, _ := New(strategy, &gridEstimator{}, Options{})
			_, err := opt.Optimize(ctx, at(0), lineScenario())
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Optimize() error = %v, want context.Canceled", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		strategy string
		wantName string
		wantErr  bool
	}{
		{"", StrategyHeuristic, false},
		{StrategyHeuristic, StrategyHeuristic, false},
		{StrategyGreedy, StrategyGreedy, false},
		{"genetic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			opt, err := New(tt.strategy, &gridEstimator{}, Options{BeamWidth: 5})
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) {
					t.Errorf("New() error = %v, want ErrUnknownStrategy", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if opt.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", opt.Name(), tt.wantName)
			}
		})
	}

	if h := NewHeuristic(&gridEstimator{}, 0); h.width != DefaultBeamWidth {
		t.Errorf("default width = %d, want %d", h.width, DefaultBeamWidth)
	}
}

func TestNodesFromOrders(t *testing.T) {
	orders := []model.Order{
		{
			ID:         "O1",
			Restaurant: model.Restaurant{ID: "R1", AvgPrepMinutes: 12, Address: model.Address{Location: at(1)}},
			Customer:   model.Customer{ID: "C1", Address: model.Address{Location: at(2)}},
		},
		{
			ID:         "O2",
			Restaurant: model.Restaurant{ID: "R1", AvgPrepMinutes: 12, Address: model.Address{Location: at(1)}},
			Customer:   model.Customer{ID: "C2", Address: model.Address{Location: at(3)}},
		},
	}

	want := []VisitNode{
		restaurant("R1", "O1", 1, 12),
		customer("C1", "O1", 2),
		restaurant("R1", "O2", 1, 12),
		customer("C2", "O2", 3),
	}

	if diff := cmp.Diff(want, NodesFromOrders(orders)); diff != "" {
		t.Errorf("NodesFromOrders() mismatch (-want +got):\n%s", diff)
	}

	if got := NodesFromOrders(nil); len(got) != 0 {
		t.Errorf("NodesFromOrders(nil) = %v, want empty", got)
	}
}

func TestPairIndex(t *testing.T) {
	nodes := []VisitNode{
		customer("C1", "O1", 0),
		restaurant("R1", "O1", 0, 0),
		customer("C2", "O2", 0),
	}
	want := []int{1, -1, -1}
	if diff := cmp.Diff(want, pairIndex(nodes)); diff != "" {
		t.Errorf("pairIndex() mismatch (-want +got):\n%s", diff)
	}
}

func TestVisitTypeString(t *testing.T) {
	if Restaurant.String() != "restaurant" || Customer.String() != "customer" || VisitType(9).String() != "unknown" {
		t.Error("unexpected VisitType strings")
	}
}

// assertFeasible checks that every node appears once and every customer
// follows its restaurant.
func assertFeasible(t *testing.T, route []VisitNode, wantLen int) {
	t.Helper()

	if len(route) != wantLen {
		t.Fatalf("route length = %d, want %d", len(route), wantLen)
	}
	picked := make(map[string]bool)
	for _, n := range route {
		switch n.Type {
		case Restaurant:
			picked[n.OrderID] = true
		case Customer:
			if !picked[n.OrderID] {
				t.Errorf("customer %s visited before restaurant of order %s", n.VisitID, n.OrderID)
			}
		}
	}
}
