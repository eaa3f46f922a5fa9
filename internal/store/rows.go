package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/rickgao/delivery-planner/internal/model"
)

// planRow mirrors the delivery_plans table.
type planRow struct {
	ID           uuid.UUID
	AgentID      string
	Strategy     string
	StartLat     float64
	StartLon     float64
	TotalMinutes float64
	CreatedAt    time.Time
}

// stopRow mirrors the plan_stops table; field order matches the select list.
type stopRow struct {
	PlanID         uuid.UUID
	Seq            int32
	Kind           string
	UserID         string
	Name           string
	OrderID        string
	Lat            float64
	Lon            float64
	ArrivalMinutes float64
}

func toPlanRow(p *model.DeliveryPlan) planRow {
	return planRow{
		ID:           p.ID,
		AgentID:      p.AgentID,
		Strategy:     p.Strategy,
		StartLat:     p.Start.Latitude,
		StartLon:     p.Start.Longitude,
		TotalMinutes: p.TotalMinutes,
		CreatedAt:    p.CreatedAt.UTC(),
	}
}

func toStopRows(p *model.DeliveryPlan) []stopRow {
	rows := make([]stopRow, len(p.Stops))
	for i, s := range p.Stops {
		rows[i] = stopRow{
			PlanID:         p.ID,
			Seq:            int32(i),
			Kind:           string(s.Kind),
			UserID:         s.UserID,
			Name:           s.Name,
			OrderID:        s.OrderID,
			Lat:            s.Location.Latitude,
			Lon:            s.Location.Longitude,
			ArrivalMinutes: s.ArrivalMinutes,
		}
	}
	return rows
}

func (r planRow) toPlan() *model.DeliveryPlan {
	return &model.DeliveryPlan{
		ID:           r.ID,
		AgentID:      r.AgentID,
		Strategy:     r.Strategy,
		Start:        model.GeoLocation{Latitude: r.StartLat, Longitude: r.StartLon},
		TotalMinutes: r.TotalMinutes,
		CreatedAt:    r.CreatedAt,
	}
}

func (r stopRow) toStop() model.Stop {
	return model.Stop{
		Kind:           model.StopKind(r.Kind),
		UserID:         r.UserID,
		Name:           r.Name,
		OrderID:        r.OrderID,
		Location:       model.GeoLocation{Latitude: r.Lat, Longitude: r.Lon},
		ArrivalMinutes: r.ArrivalMinutes,
	}
}
