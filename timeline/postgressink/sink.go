package postgressink

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/postgressink/internal/adapters"
)

const defaultTableName = "timeline_entries"

const (
	logMsgBuildQueryFailed  = "failed to build sql statement"
	logMsgDBExecFailed      = "database execution failed"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgEntryExported     = "entry exported"
	logMsgQueryCompleted    = "query completed"
	logMsgTableCreated      = "table created"
	logMsgSQLExecuted       = "executed sql for: "
	logMsgOperation         = "timeline sink operation: "
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrKind             = "kind"
	logAttrSequence         = "sequence"
	logAttrEntryCount       = "entry_count"
	logAttrDurationMS       = "duration_ms"
	logAttrTable            = "table"
	logActionExport         = "export"
	logActionQuery          = "query"
	logActionCreateTable    = "create table"
	operationExport         = "export"
	operationQuery          = "query"
	operationCreateTable    = "create_table"
	errorTypeBuildQuery     = "build_query_error"
	errorTypeDatabaseExec   = "database_exec_error"
	errorTypeDatabaseQuery  = "database_query_error"
	errorTypeRowScan        = "row_scan_error"
	errorTypeMarshalPayload = "marshal_payload_error"
)

// ExportedEntry is an entry as it was read back from the table.
type ExportedEntry struct {
	RunID       uuid.UUID
	Sequence    timeline.SequenceNumberUint
	OccurredAt  time.Time
	Kind        timeline.Kind
	Subject     string
	Message     string
	PayloadJSON []byte
}

// Sink writes history entries into a Postgres table.
type Sink struct {
	db               adapters.DBAdapter
	tableName        string
	runID            uuid.UUID
	logger           timeline.Logger
	contextualLogger timeline.ContextualLogger
	metricsCollector timeline.MetricsCollector
	tracingCollector timeline.TracingCollector
}

// NewSinkFromPGXPool creates a new Sink using a pgx Pool with optional configuration.
func NewSinkFromPGXPool(db *pgxpool.Pool, options ...Option) (Sink, error) {
	if db == nil {
		return Sink{}, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewPGXAdapter(db), options...)
}

// NewSinkFromSQLDB creates a new Sink using a sql.DB with optional configuration.
func NewSinkFromSQLDB(db *sql.DB, options ...Option) (Sink, error) {
	if db == nil {
		return Sink{}, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewSQLAdapter(db), options...)
}

// NewSinkFromSQLX creates a new Sink using a sqlx.DB with optional configuration.
func NewSinkFromSQLX(db *sqlx.DB, options ...Option) (Sink, error) {
	if db == nil {
		return Sink{}, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewSQLXAdapter(db), options...)
}

func newSink(db adapters.DBAdapter, options ...Option) (Sink, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return Sink{}, err
	}

	s := Sink{
		db:        db,
		tableName: defaultTableName,
		runID:     runID,
	}

	for _, option := range options {
		if err = option(&s); err != nil {
			return Sink{}, err
		}
	}

	return s, nil
}

func (s Sink) RunID() uuid.UUID {
	return s.runID
}

func (s Sink) TableName() string {
	return s.tableName
}

// CreateTable creates the table and its subject index if they do not exist.
func (s Sink) CreateTable(ctx context.Context) error {
	start := time.Now()

	for _, statement := range s.buildCreateTableStatements() {
		if _, err := s.execute(ctx, statement, logActionCreateTable); err != nil {
			s.recordErrorMetrics(ctx, operationCreateTable, errorTypeDatabaseExec)
			return errors.Join(ErrCreatingTableFailed, err)
		}
	}

	s.logOperation(ctx, logMsgTableCreated, logAttrTable, s.tableName, logAttrDurationMS, toMilliseconds(time.Since(start)))

	return nil
}

// Export inserts entry under the run id of the Sink.
func (s Sink) Export(ctx context.Context, entry timeline.Entry) error {
	tracer, ctx := s.startTracing(ctx, operationExport, map[string]string{
		spanAttrKind:     string(entry.Kind),
		spanAttrSequence: formatUint(entry.Sequence),
	})
	start := time.Now()

	payloadJSON, marshalErr := timeline.MarshalPayload(entry)
	if marshalErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, marshalErr, logAttrKind, string(entry.Kind))
		s.observeFailure(ctx, tracer, operationExport, errorTypeMarshalPayload, time.Since(start))

		return errors.Join(ErrExportingEntryFailed, marshalErr)
	}

	sqlQuery, buildErr := s.buildInsertStatement(entry, payloadJSON)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrKind, string(entry.Kind))
		s.observeFailure(ctx, tracer, operationExport, errorTypeBuildQuery, time.Since(start))

		return buildErr
	}

	if _, execErr := s.execute(ctx, sqlQuery, logActionExport); execErr != nil {
		s.observeFailure(ctx, tracer, operationExport, errorTypeDatabaseExec, time.Since(start))

		return errors.Join(ErrExportingEntryFailed, execErr)
	}

	duration := time.Since(start)
	s.logOperation(ctx, logMsgEntryExported,
		logAttrSequence, entry.Sequence,
		logAttrKind, string(entry.Kind),
		logAttrDurationMS, toMilliseconds(duration),
	)
	s.observeSuccess(ctx, tracer, operationExport, 1, duration)

	return nil
}

// Query reads the entries of the run id of the Sink matching filter, ordered by sequence number.
func (s Sink) Query(ctx context.Context, filter timeline.Filter) ([]ExportedEntry, error) {
	tracer, ctx := s.startTracing(ctx, operationQuery, map[string]string{})
	start := time.Now()

	sqlQuery, buildErr := s.buildSelectStatement(filter)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildQueryFailed, buildErr)
		s.observeFailure(ctx, tracer, operationQuery, errorTypeBuildQuery, time.Since(start))

		return nil, buildErr
	}

	queryStart := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logSQLWithDuration(ctx, sqlQuery, logActionQuery, time.Since(queryStart))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		s.observeFailure(ctx, tracer, operationQuery, errorTypeDatabaseQuery, time.Since(start))

		return nil, errors.Join(ErrQueryingEntriesFailed, queryErr)
	}

	defer s.closeRows(ctx, rows)

	entries, scanErr := s.scanEntries(rows)
	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr)
		s.observeFailure(ctx, tracer, operationQuery, errorTypeRowScan, time.Since(start))

		return nil, scanErr
	}

	duration := time.Since(start)
	s.logOperation(ctx, logMsgQueryCompleted, logAttrEntryCount, len(entries), logAttrDurationMS, toMilliseconds(duration))
	s.observeSuccess(ctx, tracer, operationQuery, len(entries), duration)

	return entries, nil
}

func (s Sink) execute(ctx context.Context, sqlQuery string, action string) (adapters.DBResult, error) {
	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	s.logSQLWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return nil, execErr
	}

	return result, nil
}

func (s Sink) scanEntries(rows adapters.DBRows) ([]ExportedEntry, error) {
	entries := make([]ExportedEntry, 0)

	for rows.Next() {
		var (
			runID    string
			sequence int64
			kind     string
			entry    ExportedEntry
		)

		if err := rows.Scan(&runID, &sequence, &entry.OccurredAt, &kind, &entry.Subject, &entry.Message, &entry.PayloadJSON); err != nil {
			return nil, errors.Join(ErrScanningDBRowFailed, err)
		}

		parsedRunID, parseErr := uuid.Parse(runID)
		if parseErr != nil {
			return nil, errors.Join(ErrScanningDBRowFailed, parseErr)
		}

		entry.RunID = parsedRunID
		entry.Sequence = timeline.SequenceNumberUint(sequence)
		entry.Kind = timeline.Kind(kind)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrScanningDBRowFailed, err)
	}

	return entries, nil
}

func (s Sink) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}
