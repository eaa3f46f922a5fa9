package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Geography
// -----------------------------------------------------------------------------

// GeoLocation is a point on the Earth's surface.
type GeoLocation struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
}

// ErrInvalidLocation is returned for coordinates outside the valid range.
var ErrInvalidLocation = errors.New("invalid location")

// Validate checks latitude is within [-90, 90] and longitude within
// [-180, 180]. NaN fails both.
func (g GeoLocation) Validate() error {
	if !(g.Latitude >= -90 && g.Latitude <= 90) {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidLocation, g.Latitude)
	}
	if !(g.Longitude >= -180 && g.Longitude <= 180) {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidLocation, g.Longitude)
	}
	return nil
}

func (g GeoLocation) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", g.Latitude, g.Longitude)
}

// Address is a physical address. Only the coordinates matter for routing.
type Address struct {
	Location GeoLocation `json:"location" yaml:"location"`
}

// Distance is a great-circle distance in kilometres.
type Distance float64

// Kilometers returns the distance as a plain float.
func (d Distance) Kilometers() float64 { return float64(d) }

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

// Customer receives orders.
type Customer struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Address  Address  `json:"address" yaml:"address"`
	OrderIDs []string `json:"order_ids,omitempty" yaml:"order_ids"`
}

// Restaurant prepares orders for pickup.
type Restaurant struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Address Address `json:"address" yaml:"address"`

	// AvgPrepMinutes is the earliest pickup time, in minutes after plan start.
	AvgPrepMinutes float64 `json:"avg_prep_minutes" yaml:"avg_prep_minutes"`
}

// Agent is a delivery driver with an optional assigned plan.
type Agent struct {
	ID       string        `json:"id" yaml:"id"`
	Location GeoLocation   `json:"location" yaml:"location"`
	Plan     *DeliveryPlan `json:"plan,omitempty" yaml:"-"`
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

// OrderDetails carries optional order metadata.
type OrderDetails struct {
	Price float64 `json:"price" yaml:"price"`
}

// Order links a customer to the restaurant preparing their food.
type Order struct {
	ID         string        `json:"id" yaml:"id"`
	Customer   Customer      `json:"customer" yaml:"customer"`
	Restaurant Restaurant    `json:"restaurant" yaml:"restaurant"`
	Details    *OrderDetails `json:"details,omitempty" yaml:"details"`
}

// ErrInvalidOrder is returned when an order is missing required identifiers.
var ErrInvalidOrder = errors.New("invalid order")

// Validate checks that the order and both of its parties are identified
// and located on the globe.
func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidOrder)
	}
	if o.Restaurant.ID == "" {
		return fmt.Errorf("%w: order %s: restaurant.id is required", ErrInvalidOrder, o.ID)
	}
	if o.Customer.ID == "" {
		return fmt.Errorf("%w: order %s: customer.id is required", ErrInvalidOrder, o.ID)
	}
	if o.Restaurant.AvgPrepMinutes < 0 {
		return fmt.Errorf("%w: order %s: restaurant.avg_prep_minutes must be >= 0", ErrInvalidOrder, o.ID)
	}
	if err := o.Restaurant.Address.Location.Validate(); err != nil {
		return fmt.Errorf("%w: order %s: restaurant %s: %w", ErrInvalidOrder, o.ID, o.Restaurant.ID, err)
	}
	if err := o.Customer.Address.Location.Validate(); err != nil {
		return fmt.Errorf("%w: order %s: customer %s: %w", ErrInvalidOrder, o.ID, o.Customer.ID, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Plans
// -----------------------------------------------------------------------------

// StopKind distinguishes pickups from drop-offs.
type StopKind string

const (
	StopPickup  StopKind = "pickup"
	StopDropoff StopKind = "dropoff"
)

// Stop is one visit on a delivery route.
type Stop struct {
	Kind           StopKind    `json:"kind"`
	UserID         string      `json:"user_id"`
	Name           string      `json:"name,omitempty"`
	OrderID        string      `json:"order_id"`
	Location       GeoLocation `json:"location"`
	ArrivalMinutes float64     `json:"arrival_minutes"`
}

// DeliveryPlan is the ordered list of restaurants and customers an agent visits.
type DeliveryPlan struct {
	ID           uuid.UUID   `json:"id"`
	AgentID      string      `json:"agent_id,omitempty"`
	Strategy     string      `json:"strategy"`
	Start        GeoLocation `json:"start"`
	Stops        []Stop      `json:"stops"`
	TotalMinutes float64     `json:"total_minutes"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserIDs returns the visit sequence as user IDs.
func (p *DeliveryPlan) UserIDs() []string {
	ids := make([]string, len(p.Stops))
	for i, s := range p.Stops {
		ids[i] = s.UserID
	}
	return ids
}
