// Package optimizer orders pickup and drop-off visits into a delivery route.
//
// Two strategies are provided:
//   - heuristic: beam search keeping the most promising partial routes, ranked
//     by arrival time plus the travel time to the nearest unvisited node
//   - greedy: always moves to the feasible node with the earliest arrival
//
// Both enforce that a customer is only visited after the restaurant of the
// same order, and that a pickup never completes before the restaurant's
// average preparation time (minutes since plan start).
package optimizer
