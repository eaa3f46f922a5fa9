// Package travel estimates travel time between locations by combining a
// distance calculator with a time estimator.
package travel

import (
	"fmt"
	"time"

	"github.com/rickgao/delivery-planner/internal/cache"
	"github.com/rickgao/delivery-planner/internal/eta"
	"github.com/rickgao/delivery-planner/internal/geo"
	"github.com/rickgao/delivery-planner/internal/metrics"
	"github.com/rickgao/delivery-planner/internal/model"
)

// TimeEstimator estimates travel time in minutes between two locations.
type TimeEstimator interface {
	EstimateMinutes(from, to model.GeoLocation) (float64, error)
}

// Service estimates distance and travel time between locations.
type Service struct {
	calc geo.Calculator
	est  eta.Estimator
}

// NewService creates a travel-time service.
func NewService(calc geo.Calculator, est eta.Estimator) *Service {
	return &Service{calc: calc, est: est}
}

// DistanceKm returns the distance between from and to.
func (s *Service) DistanceKm(from, to model.GeoLocation) model.Distance {
	return s.calc.Distance(from, to)
}

// EstimateMinutes returns the travel time between from and to.
func (s *Service) EstimateMinutes(from, to model.GeoLocation) (float64, error) {
	return eta.Minutes(s.est, s.DistanceKm(from, to))
}

// Cached memoizes another TimeEstimator.
type Cached struct {
	next  TimeEstimator
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps next with c. Entries live for ttl.
func NewCached(next TimeEstimator, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl}
}

// EstimateMinutes returns a cached estimate when one exists.
func (c *Cached) EstimateMinutes(from, to model.GeoLocation) (float64, error) {
	key := Key(from, to)
	if v, ok := c.cache.Get(key); ok {
		if minutes, ok := v.(float64); ok {
			metrics.TravelCacheHits.Inc()
			return minutes, nil
		}
	}
	metrics.TravelCacheMisses.Inc()

	minutes, err := c.next.EstimateMinutes(from, to)
	if err != nil {
		return 0, err
	}
	c.cache.Set(key, minutes, c.ttl)
	return minutes, nil
}

// Key builds the cache key for a directed pair of locations, rounded to
// six decimal places (about 0.1 m).
func Key(from, to model.GeoLocation) string {
	return fmt.Sprintf("%.6f,%.6f|%.6f,%.6f", from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}
