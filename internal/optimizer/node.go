package optimizer

import "github.com/rickgao/delivery-planner/internal/model"

// VisitType distinguishes pickups from drop-offs.
type VisitType int

const (
	Restaurant VisitType = iota
	Customer
)

func (t VisitType) String() string {
	switch t {
	case Restaurant:
		return "restaurant"
	case Customer:
		return "customer"
	default:
		return "unknown"
	}
}

// VisitNode is one place the agent must visit. A customer node is paired
// with the restaurant node carrying the same OrderID.
type VisitNode struct {
	VisitID     string
	OrderID     string
	Type        VisitType
	Location    model.GeoLocation
	PrepMinutes float64 // restaurants only
}

// NodesFromOrders expands each order into a restaurant node followed by a
// customer node.
func NodesFromOrders(orders []model.Order) []VisitNode {
	nodes := make([]VisitNode, 0, len(orders)*2)
	for _, o := range orders {
		nodes = append(nodes,
			VisitNode{
				VisitID:     o.Restaurant.ID,
				OrderID:     o.ID,
				Type:        Restaurant,
				Location:    o.Restaurant.Address.Location,
				PrepMinutes: o.Restaurant.AvgPrepMinutes,
			},
			VisitNode{
				VisitID:  o.Customer.ID,
				OrderID:  o.ID,
				Type:     Customer,
				Location: o.Customer.Address.Location,
			},
		)
	}
	return nodes
}

// pairIndex returns, for every customer node, the index of the restaurant
// node of the same order, or -1 if there is none. Restaurant entries are -1.
func pairIndex(nodes []VisitNode) []int {
	restaurants := make(map[string]int, len(nodes)/2)
	for i, n := range nodes {
		if n.Type == Restaurant {
			if _, ok := restaurants[n.OrderID]; !ok {
				restaurants[n.OrderID] = i
			}
		}
	}

	pairs := make([]int, len(nodes))
	for i, n := range nodes {
		pairs[i] = -1
		if n.Type == Customer {
			if r, ok := restaurants[n.OrderID]; ok {
				pairs[i] = r
			}
		}
	}
	return pairs
}
