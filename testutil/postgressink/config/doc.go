// Package config provides PostgreSQL connections for the timeline sink integration tests.
//
// It creates connections for the three supported adapter types (pgx.Pool, sql.DB, sqlx.DB).
// The DSN comes from the TIMELINE_POSTGRES_DSN environment variable and falls back to the local test database.
package config
