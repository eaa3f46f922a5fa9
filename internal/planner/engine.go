package planner

import (
	"context"

	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/optimizer"
)

// Engine maps orders to visit nodes and runs an optimizer over them.
type Engine struct {
	Optimizer optimizer.Optimizer
}

// NewEngine creates an engine around opt.
func NewEngine(opt optimizer.Optimizer) *Engine {
	return &Engine{Optimizer: opt}
}

// Route returns the optimized visiting order for orders.
func (e *Engine) Route(ctx context.Context, start model.GeoLocation, orders []model.Order) ([]optimizer.VisitNode, error) {
	return e.Optimizer.Optimize(ctx, start, optimizer.NodesFromOrders(orders))
}

// GenerateRoute returns the visit IDs in route order. No orders yields an
// empty route.
func (e *Engine) GenerateRoute(ctx context.Context, start model.GeoLocation, orders []model.Order) ([]string, error) {
	route, err := e.Route(ctx, start, orders)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(route))
	for i, n := range route {
		ids[i] = n.VisitID
	}
	return ids, nil
}
