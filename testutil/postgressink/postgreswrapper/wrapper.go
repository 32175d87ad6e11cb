package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/testutil/postgressink/config"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/postgressink"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

const connectTimeout = 3 * time.Second

// Wrapper abstracts over the different adapter types.
type Wrapper interface {
	GetSink() postgressink.Sink
	Exec(ctx context.Context, query string) error
	CountRows(ctx context.Context, tableName string) (int, error)
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	sink postgressink.Sink
}

func (w *PGXPoolWrapper) GetSink() postgressink.Sink {
	return w.sink
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.pool.Exec(ctx, query)
	return err
}

func (w *PGXPoolWrapper) CountRows(ctx context.Context, tableName string) (int, error) {
	var cnt int
	err := w.pool.QueryRow(ctx, countQuery(tableName)).Scan(&cnt)

	return cnt, err
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db   *sql.DB
	sink postgressink.Sink
}

func (w *SQLDBWrapper) GetSink() postgressink.Sink {
	return w.sink
}

func (w *SQLDBWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *SQLDBWrapper) CountRows(ctx context.Context, tableName string) (int, error) {
	var cnt int
	err := w.db.QueryRowContext(ctx, countQuery(tableName)).Scan(&cnt)

	return cnt, err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db   *sqlx.DB
	sink postgressink.Sink
}

func (w *SQLXWrapper) GetSink() postgressink.Sink {
	return w.sink
}

func (w *SQLXWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *SQLXWrapper) CountRows(ctx context.Context, tableName string) (int, error) {
	var cnt int
	err := w.db.GetContext(ctx, &cnt, countQuery(tableName))

	return cnt, err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the wrapper selected by ADAPTER_TYPE, with a sink writing into tableName.
// The test is skipped if the database is not reachable. The wrapper is closed when the test ends.
func CreateWrapperWithTestConfig(t testing.TB, tableName string, options ...postgressink.Option) Wrapper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	options = append([]postgressink.Option{postgressink.WithTableName(tableName)}, options...)

	var wrapper Wrapper

	switch adapterType := strings.ToLower(os.Getenv("ADAPTER_TYPE")); adapterType {
	case typePGXPool, "":
		pool, err := config.PostgresPGXPoolTestConnection(ctx)
		if err != nil {
			t.Skipf("postgres not reachable: %v", err)
		}

		sink, err := postgressink.NewSinkFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating sink")

		wrapper = &PGXPoolWrapper{pool: pool, sink: sink}

	case typeSQLDB:
		db, err := config.PostgresSQLDBTestConnection(ctx)
		if err != nil {
			t.Skipf("postgres not reachable: %v", err)
		}

		sink, err := postgressink.NewSinkFromSQLDB(db, options...)
		require.NoError(t, err, "error creating sink")

		wrapper = &SQLDBWrapper{db: db, sink: sink}

	case typeSQLXDB:
		db, err := config.PostgresSQLXTestConnection(ctx)
		if err != nil {
			t.Skipf("postgres not reachable: %v", err)
		}

		sink, err := postgressink.NewSinkFromSQLX(db, options...)
		require.NoError(t, err, "error creating sink")

		wrapper = &SQLXWrapper{db: db, sink: sink}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	t.Cleanup(func() {
		DropTable(t, wrapper, tableName)
		wrapper.Close()
	})

	return wrapper
}

// DropTable removes tableName if it exists.
func DropTable(t testing.TB, wrapper Wrapper, tableName string) {
	t.Helper()

	query := "DROP TABLE IF EXISTS " + pgx.Identifier{tableName}.Sanitize()
	require.NoError(t, wrapper.Exec(context.Background(), query), "error dropping table")
}

func countQuery(tableName string) string {
	return "SELECT count(*) FROM " + pgx.Identifier{tableName}.Sanitize()
}
