// Package postgreswrapper abstracts the three database adapter types behind one test fixture.
//
// The adapter type is selected with the ADAPTER_TYPE environment variable (pgx.pool, sql.db, sqlx.db).
// Tests are skipped when the test database cannot be reached.
package postgreswrapper
