// Package dispatch plans routes for many agents at once.
//
// The Dispatcher:
//   - Runs one planning job per agent with bounded concurrency
//   - Gives every job its own timeout
//   - Never lets one failing job cancel the others
//   - Logs a single summary line per dispatch cycle
package dispatch
