package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rickgao/delivery-planner/internal/model"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	plans   map[uuid.UUID]*model.DeliveryPlan
	byAgent map[string][]uuid.UUID // insertion order
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		plans:   make(map[uuid.UUID]*model.DeliveryPlan),
		byAgent: make(map[string][]uuid.UUID),
	}
}

// Save stores a copy of plan.
func (m *Memory) Save(ctx context.Context, plan *model.DeliveryPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[plan.ID]; ok {
		return nil
	}
	m.plans[plan.ID] = clonePlan(plan)
	m.byAgent[plan.AgentID] = append(m.byAgent[plan.AgentID], plan.ID)
	return nil
}

// Get returns a copy of the plan with the given id.
func (m *Memory) Get(ctx context.Context, id uuid.UUID) (*model.DeliveryPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePlan(p), nil
}

// ListByAgent returns copies of the agent's plans, newest first. Plans
// created at the same instant are ordered by most recent save.
func (m *Memory) ListByAgent(ctx context.Context, agentID string, limit int) ([]*model.DeliveryPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	ids := m.byAgent[agentID]
	out := make([]*model.DeliveryPlan, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, clonePlan(m.plans[ids[i]]))
	}
	m.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b *model.DeliveryPlan) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored plans.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plans)
}
