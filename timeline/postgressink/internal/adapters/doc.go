// Package adapters abstracts the database driver behind the Postgres sink,
// so the same SQL can run on pgxpool.Pool, sql.DB, and sqlx.DB.
package adapters
