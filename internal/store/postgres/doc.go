// Package postgres is the PostgreSQL posts.Store backend.
//
// The schema lives in migrations/ and is embedded into the binary; call
// Migrate once at startup before serving. Insertion order is tracked by a
// BIGSERIAL column so List never depends on timestamp resolution.
package postgres
