// Package geo computes distances between geographic coordinates.
package geo

import (
	"math"

	"github.com/rickgao/delivery-planner/internal/model"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Calculator measures the distance between two locations.
type Calculator interface {
	Distance(from, to model.GeoLocation) model.Distance
}

// Haversine computes great-circle distances with the haversine formula.
type Haversine struct{}

// Distance returns the great-circle distance between from and to.
func (Haversine) Distance(from, to model.GeoLocation) model.Distance {
	dLat := ToRadians(to.Latitude - from.Latitude)
	dLon := ToRadians(to.Longitude - from.Longitude)

	lat1 := ToRadians(from.Latitude)
	lat2 := ToRadians(to.Latitude)

	a := Hav(dLat) + math.Cos(lat1)*math.Cos(lat2)*Hav(dLon)
	// Rounding can push a just past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return model.Distance(c * EarthRadiusKm)
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Hav returns the haversine of an angle: sin²(θ/2).
func Hav(theta float64) float64 {
	s := math.Sin(theta / 2)
	return s * s
}
