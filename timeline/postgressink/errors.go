package postgressink

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("database connection is nil")
var ErrEmptyTableName = errors.New("empty table name supplied")
var ErrNilRunID = errors.New("nil run id supplied")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrCreatingTableFailed = errors.New("creating table failed")
var ErrExportingEntryFailed = errors.New("exporting entry failed")
var ErrQueryingEntriesFailed = errors.New("querying entries failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
