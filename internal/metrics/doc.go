// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Plans computed per strategy and outcome, with latency and route size
//   - Travel-time cache effectiveness
//   - Dispatch job outcomes
//   - Plan stream subscribers and dropped messages
//   - HTTP request latencies
package metrics
