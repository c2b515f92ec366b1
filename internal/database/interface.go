// Package database defines the contract for SQL databases that exported
// Access tables are loaded into, plus the SQL helpers shared by the
// drivers.
//
// Callers depend only on this package, never on the mysql or postgres
// packages directly, except to construct a Target.
package database

import "context"

// Target is a writable SQL database.
type Target interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// Exec runs a statement and returns the number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// QueryRow executes a SQL statement that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Dialect reports which SQL flavour the target speaks.
	Dialect() Dialect
}

// Row is an abstraction over a single database row.
type Row interface {
	Scan(dest ...any) error
}
