package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/rickgao/delivery-planner/internal/model"
)

// PlanRequest is the body of POST /v1/plans.
type PlanRequest struct {
	AgentID     string             `json:"agent_id,omitempty" yaml:"agent_id"`
	Start       model.GeoLocation  `json:"start" yaml:"start"`
	Strategy    string             `json:"strategy,omitempty" yaml:"strategy"`
	Orders      []OrderInput       `json:"orders" yaml:"orders"`
	Customers   []model.Customer   `json:"customers,omitempty" yaml:"customers"`
	Restaurants []model.Restaurant `json:"restaurants,omitempty" yaml:"restaurants"`
}

// OrderInput names an order's parties either inline or by ID. An ID-only
// party must appear in the request's customer or restaurant list.
type OrderInput struct {
	ID           string            `json:"id" yaml:"id"`
	CustomerID   string            `json:"customer_id,omitempty" yaml:"customer_id"`
	RestaurantID string            `json:"restaurant_id,omitempty" yaml:"restaurant_id"`
	Customer     *model.Customer   `json:"customer,omitempty" yaml:"customer"`
	Restaurant   *model.Restaurant `json:"restaurant,omitempty" yaml:"restaurant"`
	Price        *float64          `json:"price,omitempty" yaml:"price"`
}

// PlanResponse is a delivery plan as returned by the service.
type PlanResponse struct {
	ID           uuid.UUID         `json:"id"`
	AgentID      string            `json:"agent_id,omitempty"`
	Strategy     string            `json:"strategy"`
	Start        model.GeoLocation `json:"start"`
	Route        []string          `json:"route"`
	Stops        []model.Stop      `json:"stops"`
	TotalMinutes float64           `json:"total_minutes"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PlanListResponse is the body of GET /v1/agents/{id}/plans.
type PlanListResponse struct {
	AgentID string         `json:"agent_id"`
	Plans   []PlanResponse `json:"plans"`
	Count   int            `json:"count"`
}

// DispatchRequest is the body of POST /v1/dispatch.
type DispatchRequest struct {
	Agents []DispatchAgent `json:"agents"`
}

// DispatchAgent is one agent's planning job.
type DispatchAgent struct {
	AgentID     string             `json:"agent_id"`
	Location    model.GeoLocation  `json:"location"`
	Strategy    string             `json:"strategy,omitempty"`
	Orders      []OrderInput       `json:"orders"`
	Customers   []model.Customer   `json:"customers,omitempty"`
	Restaurants []model.Restaurant `json:"restaurants,omitempty"`
}

// DispatchResponse reports every job of a dispatch in request order.
type DispatchResponse struct {
	Results    []DispatchResult `json:"results"`
	Planned    int              `json:"planned"`
	Failed     int              `json:"failed"`
	DurationMs int64            `json:"duration_ms"`
}

// DispatchResult is one agent's outcome.
type DispatchResult struct {
	AgentID string        `json:"agent_id"`
	Plan    *PlanResponse `json:"plan,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes.
const (
	CodeInvalidRequest = "invalid_request"
	CodeInfeasible     = "infeasible"
	CodeNotFound       = "not_found"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
}

// VersionResponse is the body of GET /version.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}
