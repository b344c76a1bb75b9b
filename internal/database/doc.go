// Package database implements the domain repositories on PostgreSQL via pgx.
//
// Connect builds the shared pgxpool with a query tracer for metrics and
// retries the initial ping, since the database may still be starting when
// the service comes up. Migrations run under an advisory lock so concurrent
// instances do not race each other.
package database
