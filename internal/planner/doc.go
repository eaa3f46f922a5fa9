// Package planner turns orders into delivery plans.
//
// Engine adapts orders to an optimizer and returns visit IDs. Planner wraps
// one engine per strategy, resolves visit IDs back to customers and
// restaurants, computes arrival times, and hands the finished plan to the
// configured store and publisher.
package planner
