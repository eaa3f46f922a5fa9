// Package api defines the planner's JSON wire types and an HTTP client for
// the planner service.
//
// REST endpoints:
//   - POST /v1/plans
//   - GET  /v1/plans/{id}
//   - GET  /v1/agents/{id}/plans
//   - POST /v1/dispatch
//   - GET  /health
//
// WebSocket endpoint:
//   - /v1/plans/stream
package api
