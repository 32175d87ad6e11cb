package postgressink

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

const (
	colRunID          = "run_id"
	colSequenceNumber = "sequence_number"
	colOccurredAt     = "occurred_at"
	colKind           = "kind"
	colSubject        = "subject"
	colMessage        = "message"
	colPayload        = "payload"
	dialectPostgres   = "postgres"
	castJsonb         = "?::jsonb"
	castUUID          = "?::uuid"
	containsJsonb     = "payload @> ?::jsonb"
)

func (s Sink) buildCreateTableStatements() []string {
	table := pgx.Identifier{s.tableName}.Sanitize()
	index := pgx.Identifier{s.tableName + "_subject_idx"}.Sanitize()

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s uuid NOT NULL,
	%s bigint NOT NULL,
	%s timestamptz NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s jsonb NOT NULL,
	PRIMARY KEY (%s, %s)
)`,
			table,
			colRunID, colSequenceNumber, colOccurredAt, colKind, colSubject, colMessage, colPayload,
			colRunID, colSequenceNumber,
		),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s, %s)`,
			index, table, colRunID, colSubject, colSequenceNumber,
		),
	}
}

func (s Sink) buildInsertStatement(entry timeline.Entry, payloadJSON []byte) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			colRunID:          goqu.L(castUUID, s.runID.String()),
			colSequenceNumber: entry.Sequence,
			colOccurredAt:     entry.At,
			colKind:           string(entry.Kind),
			colSubject:        entry.Subject,
			colMessage:        entry.Message,
			colPayload:        goqu.L(castJsonb, string(payloadJSON)),
		})

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s Sink) buildSelectStatement(filter timeline.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(colRunID, colSequenceNumber, colOccurredAt, colKind, colSubject, colMessage, colPayload).
		Where(goqu.L(colRunID+" = "+castUUID, s.runID.String())).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt, whereErr := s.addWhereClause(filter, selectStmt)
	if whereErr != nil {
		return "", whereErr
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s Sink) addWhereClause(filter timeline.Filter, selectStmt *goqu.SelectDataset) (*goqu.SelectDataset, error) {
	if filter.SequenceNumberHigherThan() > 0 {
		selectStmt = selectStmt.Where(goqu.C(colSequenceNumber).Gt(filter.SequenceNumberHigherThan()))
	}

	if !filter.OccurredFrom().IsZero() {
		selectStmt = selectStmt.Where(goqu.C(colOccurredAt).Gte(filter.OccurredFrom()))
	}

	if !filter.OccurredUntil().IsZero() {
		selectStmt = selectStmt.Where(goqu.C(colOccurredAt).Lte(filter.OccurredUntil()))
	}

	itemsExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		kindExpressions := make([]goqu.Expression, 0, len(item.Kinds()))
		for _, kind := range item.Kinds() {
			kindExpressions = append(kindExpressions, goqu.Ex{colKind: string(kind)})
		}

		predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			expression, err := predicateExpression(predicate)
			if err != nil {
				return nil, err
			}

			predicateExpressions = append(predicateExpressions, expression)
		}

		var predicatesExpressionList exp.ExpressionList
		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		itemsExpressions = append(itemsExpressions, goqu.And(goqu.Or(kindExpressions...), predicatesExpressionList))
	}

	if len(itemsExpressions) > 0 {
		selectStmt = selectStmt.Where(goqu.Or(itemsExpressions...))
	}

	return selectStmt, nil
}

// predicateExpression maps subject and kind to their columns and everything else to a payload containment check.
func predicateExpression(predicate timeline.FilterPredicate) (goqu.Expression, error) {
	switch predicate.Key() {
	case timeline.FieldSubject:
		return goqu.Ex{colSubject: predicate.Val()}, nil
	case timeline.FieldKind:
		return goqu.Ex{colKind: predicate.Val()}, nil
	}

	document, err := jsoniter.ConfigFastest.Marshal(map[string]string{predicate.Key(): predicate.Val()})
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	return goqu.L(containsJsonb, string(document)), nil
}
