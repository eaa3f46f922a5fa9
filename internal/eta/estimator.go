// Package eta converts travel distances into travel times.
package eta

import (
	"errors"
	"fmt"

	"github.com/rickgao/delivery-planner/internal/model"
)

// ErrInvalidSpeed is returned when an average speed is not positive.
var ErrInvalidSpeed = errors.New("average speed must be positive")

// Estimator estimates how long it takes to cover a distance.
type Estimator interface {
	EstimateHours(d model.Distance) (float64, error)
}

// Minutes returns the estimated travel time for d in minutes.
func Minutes(e Estimator, d model.Distance) (float64, error) {
	h, err := e.EstimateHours(d)
	if err != nil {
		return 0, err
	}
	return h * 60, nil
}

// AverageSpeed assumes a constant travel speed.
type AverageSpeed struct {
	KmPerHour float64
}

// NewAverageSpeed returns an estimator for the given speed.
func NewAverageSpeed(kmPerHour float64) (*AverageSpeed, error) {
	if kmPerHour <= 0 {
		return nil, fmt.Errorf("%w: got %v km/h", ErrInvalidSpeed, kmPerHour)
	}
	return &AverageSpeed{KmPerHour: kmPerHour}, nil
}

// EstimateHours returns distance divided by speed.
func (a AverageSpeed) EstimateHours(d model.Distance) (float64, error) {
	if a.KmPerHour <= 0 {
		return 0, fmt.Errorf("%w: got %v km/h", ErrInvalidSpeed, a.KmPerHour)
	}
	return d.Kilometers() / a.KmPerHour, nil
}
