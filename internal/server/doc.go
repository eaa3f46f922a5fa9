// Package server exposes the planner over HTTP.
//
// Routes:
//   - POST /v1/plans              plan a route
//   - GET  /v1/plans/{id}         fetch a stored plan
//   - GET  /v1/agents/{id}/plans  list an agent's plans
//   - POST /v1/dispatch           plan for many agents
//   - GET  /v1/plans/stream       websocket feed of new plans
//   - GET  /health, /version and the metrics path
package server
