// Package postgressink exports history entries into a Postgres table and reads them back.
//
// The Sink implements timeline.Sink, so it can be plugged into a Manager with
// pubsubmanager.WithSink. Each Sink writes under its own run id; the table keeps the
// entries of every run side by side. The Manager never reads the table back.
//
// Supported database drivers:
//   - pgx (github.com/jackc/pgx/v5/pgxpool)
//   - database/sql (with lib/pq)
//   - sqlx (github.com/jmoiron/sqlx)
//
// Common usage pattern:
//
//	sink, err := postgressink.NewSinkFromPGXPool(pool, postgressink.WithLogger(logger))
//	if err != nil {
//		// handle error
//	}
//
//	if err = sink.CreateTable(ctx); err != nil {
//		// handle error
//	}
//
//	manager, err := pubsubmanager.NewManager(pubsubmanager.WithSink(sink))
package postgressink
