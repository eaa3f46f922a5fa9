// Package model defines shared data types used across the delivery planner.
//
// Conventions:
//   - Coordinates: float64 degrees (WGS84 latitude/longitude)
//   - Distances: float64 kilometres
//   - Durations on a route: float64 minutes since plan start
//   - IDs: string for users and orders, uuid.UUID for plans
package model
