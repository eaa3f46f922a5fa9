// Package store persists delivery plans.
//
// Memory keeps plans in process and is the default. Postgres writes plans
// and their stops to two tables through a pgx pool.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rickgao/delivery-planner/internal/model"
)

// ErrNotFound is returned when no plan has the requested id.
var ErrNotFound = errors.New("plan not found")

// Store saves and loads delivery plans. Saving a plan whose id already
// exists is a no-op.
type Store interface {
	Save(ctx context.Context, plan *model.DeliveryPlan) error
	Get(ctx context.Context, id uuid.UUID) (*model.DeliveryPlan, error)
	// ListByAgent returns the agent's plans newest first. A limit <= 0
	// returns all of them.
	ListByAgent(ctx context.Context, agentID string, limit int) ([]*model.DeliveryPlan, error)
}

func clonePlan(p *model.DeliveryPlan) *model.DeliveryPlan {
	cp := *p
	cp.Stops = append([]model.Stop(nil), p.Stops...)
	return &cp
}
