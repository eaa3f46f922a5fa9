package planner

import (
	"fmt"

	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/optimizer"
)

// directory resolves visit IDs to the customers and restaurants of a
// request.
type directory struct {
	customers   map[string]model.Customer
	restaurants map[string]model.Restaurant
}

// newDirectory indexes the entities embedded in the orders, then lets the
// explicit lists replace them. Embedded parties that carry only an ID are
// references and must be supplied by a list.
func newDirectory(req Request) *directory {
	d := &directory{
		customers:   make(map[string]model.Customer, len(req.Orders)+len(req.Customers)),
		restaurants: make(map[string]model.Restaurant, len(req.Orders)+len(req.Restaurants)),
	}
	for _, o := range req.Orders {
		if _, ok := d.customers[o.Customer.ID]; !ok && !customerRef(o.Customer) {
			d.customers[o.Customer.ID] = o.Customer
		}
		if _, ok := d.restaurants[o.Restaurant.ID]; !ok && !restaurantRef(o.Restaurant) {
			d.restaurants[o.Restaurant.ID] = o.Restaurant
		}
	}
	for _, c := range req.Customers {
		d.customers[c.ID] = c
	}
	for _, r := range req.Restaurants {
		d.restaurants[r.ID] = r
	}
	return d
}

func customerRef(c model.Customer) bool {
	return c.Name == "" && c.Address == (model.Address{}) && len(c.OrderIDs) == 0
}

func restaurantRef(r model.Restaurant) bool {
	return r.Name == "" && r.Address == (model.Address{}) && r.AvgPrepMinutes == 0
}

// resolve returns copies of orders whose parties come from the directory.
func (d *directory) resolve(orders []model.Order) ([]model.Order, error) {
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		c, ok := d.customers[o.Customer.ID]
		if !ok {
			return nil, fmt.Errorf("%w: order %s: customer %s", ErrUnknownUser, o.ID, o.Customer.ID)
		}
		r, ok := d.restaurants[o.Restaurant.ID]
		if !ok {
			return nil, fmt.Errorf("%w: order %s: restaurant %s", ErrUnknownUser, o.ID, o.Restaurant.ID)
		}
		o.Customer, o.Restaurant = c, r
		out[i] = o
	}
	return out, nil
}

func (d *directory) stop(n optimizer.VisitNode) (model.Stop, error) {
	stop := model.Stop{
		UserID:   n.VisitID,
		OrderID:  n.OrderID,
		Location: n.Location,
	}

	switch n.Type {
	case optimizer.Restaurant:
		r, ok := d.restaurants[n.VisitID]
		if !ok {
			return model.Stop{}, fmt.Errorf("%w: restaurant %s", ErrUnknownUser, n.VisitID)
		}
		stop.Kind = model.StopPickup
		stop.Name = r.Name
	case optimizer.Customer:
		c, ok := d.customers[n.VisitID]
		if !ok {
			return model.Stop{}, fmt.Errorf("%w: customer %s", ErrUnknownUser, n.VisitID)
		}
		stop.Kind = model.StopDropoff
		stop.Name = c.Name
	default:
		return model.Stop{}, fmt.Errorf("%w: %s has visit type %s", ErrUnknownUser, n.VisitID, n.Type)
	}
	return stop, nil
}
