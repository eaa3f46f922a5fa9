package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// CreatePlan plans a route on the service.
func (c *Client) CreatePlan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	var resp PlanResponse
	if err := c.post(ctx, "/v1/plans", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPlan fetches a stored plan by ID.
func (c *Client) GetPlan(ctx context.Context, id uuid.UUID) (*PlanResponse, error) {
	var resp PlanResponse
	if err := c.get(ctx, "/v1/plans/"+id.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAgentPlans fetches an agent's plans, newest first. A limit <= 0 uses
// the server default.
func (c *Client) ListAgentPlans(ctx context.Context, agentID string, limit int) (*PlanListResponse, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	var resp PlanListResponse
	if err := c.get(ctx, "/v1/agents/"+url.PathEscape(agentID)+"/plans", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dispatch plans routes for many agents.
func (c *Client) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResponse, error) {
	var resp DispatchResponse
	if err := c.post(ctx, "/v1/dispatch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Version fetches the service build information.
func (c *Client) Version(ctx context.Context) (*VersionResponse, error) {
	var resp VersionResponse
	if err := c.get(ctx, "/version", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
