package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/delivery-planner/internal/dispatch"
	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/planner"
)

// ErrInvalidRequest is returned when a request body cannot be turned into
// a planning job.
var ErrInvalidRequest = errors.New("invalid request")

// ToRequest converts a PlanRequest into a planner request.
func (r PlanRequest) ToRequest() (planner.Request, error) {
	if err := r.Start.Validate(); err != nil {
		return planner.Request{}, fmt.Errorf("%w: start: %w", ErrInvalidRequest, err)
	}
	orders, err := toOrders(r.Orders, r.Customers, r.Restaurants)
	if err != nil {
		return planner.Request{}, err
	}
	return planner.Request{
		AgentID:     r.AgentID,
		Start:       r.Start,
		Orders:      orders,
		Customers:   r.Customers,
		Restaurants: r.Restaurants,
		Strategy:    r.Strategy,
	}, nil
}

// ToJob converts a DispatchAgent into a dispatch job.
func (a DispatchAgent) ToJob() (dispatch.Job, error) {
	if a.AgentID == "" {
		return dispatch.Job{}, fmt.Errorf("%w: agent_id is required", ErrInvalidRequest)
	}
	if err := a.Location.Validate(); err != nil {
		return dispatch.Job{}, fmt.Errorf("%w: agent %s: location: %w", ErrInvalidRequest, a.AgentID, err)
	}
	orders, err := toOrders(a.Orders, a.Customers, a.Restaurants)
	if err != nil {
		return dispatch.Job{}, fmt.Errorf("agent %s: %w", a.AgentID, err)
	}
	return dispatch.Job{
		Agent:       model.Agent{ID: a.AgentID, Location: a.Location},
		Orders:      orders,
		Customers:   a.Customers,
		Restaurants: a.Restaurants,
		Strategy:    a.Strategy,
	}, nil
}

// ToJobs converts every agent of a dispatch request.
func (r DispatchRequest) ToJobs() ([]dispatch.Job, error) {
	jobs := make([]dispatch.Job, 0, len(r.Agents))
	for _, a := range r.Agents {
		job, err := a.ToJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func toOrders(inputs []OrderInput, customers []model.Customer, restaurants []model.Restaurant) ([]model.Order, error) {
	knownCustomers := make(map[string]bool, len(customers))
	for _, c := range customers {
		knownCustomers[c.ID] = true
	}
	knownRestaurants := make(map[string]bool, len(restaurants))
	for _, r := range restaurants {
		knownRestaurants[r.ID] = true
	}

	orders := make([]model.Order, 0, len(inputs))
	for _, in := range inputs {
		o, err := in.toOrder(knownCustomers, knownRestaurants)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (in OrderInput) toOrder(knownCustomers, knownRestaurants map[string]bool) (model.Order, error) {
	o := model.Order{ID: in.ID}

	switch {
	case in.Customer != nil:
		if in.CustomerID != "" && in.CustomerID != in.Customer.ID {
			return o, fmt.Errorf("%w: order %s: customer_id %q does not match customer.id %q", ErrInvalidRequest, in.ID, in.CustomerID, in.Customer.ID)
		}
		if err := in.Customer.Address.Location.Validate(); err != nil {
			return o, fmt.Errorf("%w: order %s: customer %s: %w", ErrInvalidRequest, in.ID, in.Customer.ID, err)
		}
		o.Customer = *in.Customer
	case knownCustomers[in.CustomerID]:
		o.Customer = model.Customer{ID: in.CustomerID}
	default:
		return o, fmt.Errorf("%w: order %s: unknown customer %q", ErrInvalidRequest, in.ID, in.CustomerID)
	}

	switch {
	case in.Restaurant != nil:
		if in.RestaurantID != "" && in.RestaurantID != in.Restaurant.ID {
			return o, fmt.Errorf("%w: order %s: restaurant_id %q does not match restaurant.id %q", ErrInvalidRequest, in.ID, in.RestaurantID, in.Restaurant.ID)
		}
		if err := in.Restaurant.Address.Location.Validate(); err != nil {
			return o, fmt.Errorf("%w: order %s: restaurant %s: %w", ErrInvalidRequest, in.ID, in.Restaurant.ID, err)
		}
		o.Restaurant = *in.Restaurant
	case knownRestaurants[in.RestaurantID]:
		o.Restaurant = model.Restaurant{ID: in.RestaurantID}
	default:
		return o, fmt.Errorf("%w: order %s: unknown restaurant %q", ErrInvalidRequest, in.ID, in.RestaurantID)
	}

	if in.Price != nil {
		o.Details = &model.OrderDetails{Price: *in.Price}
	}
	return o, nil
}

// NewPlanResponse converts a plan to its wire form.
func NewPlanResponse(p *model.DeliveryPlan) PlanResponse {
	stops := p.Stops
	if stops == nil {
		stops = []model.Stop{}
	}
	return PlanResponse{
		ID:           p.ID,
		AgentID:      p.AgentID,
		Strategy:     p.Strategy,
		Start:        p.Start,
		Route:        p.UserIDs(),
		Stops:        stops,
		TotalMinutes: p.TotalMinutes,
		CreatedAt:    p.CreatedAt,
	}
}

// ToPlan converts the wire form back to a plan.
func (r PlanResponse) ToPlan() *model.DeliveryPlan {
	return &model.DeliveryPlan{
		ID:           r.ID,
		AgentID:      r.AgentID,
		Strategy:     r.Strategy,
		Start:        r.Start,
		Stops:        r.Stops,
		TotalMinutes: r.TotalMinutes,
		CreatedAt:    r.CreatedAt,
	}
}

// NewPlanListResponse converts an agent's plans to their wire form.
func NewPlanListResponse(agentID string, plans []*model.DeliveryPlan) PlanListResponse {
	out := PlanListResponse{
		AgentID: agentID,
		Plans:   make([]PlanResponse, 0, len(plans)),
		Count:   len(plans),
	}
	for _, p := range plans {
		out.Plans = append(out.Plans, NewPlanResponse(p))
	}
	return out
}

// NewDispatchResponse converts a dispatch summary to its wire form.
func NewDispatchResponse(s dispatch.Summary) DispatchResponse {
	out := DispatchResponse{
		Results:    make([]DispatchResult, len(s.Results)),
		Planned:    s.Planned,
		Failed:     s.Failed,
		DurationMs: s.Duration.Milliseconds(),
	}
	for i, r := range s.Results {
		res := DispatchResult{AgentID: r.AgentID}
		if r.Err != nil {
			res.Error = r.Err.Error()
		} else if r.Plan != nil {
			pr := NewPlanResponse(r.Plan)
			res.Plan = &pr
		}
		out.Results[i] = res
	}
	return out
}

// Duration returns the dispatch duration.
func (r DispatchResponse) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}
