// Package database provides the PostgreSQL connection pool for plan storage.
//
// The pool is optional: a planner without database.postgres.host keeps
// plans in memory and never calls into this package.
package database
