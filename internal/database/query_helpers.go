// Runetrics - RuneScape Player Population Analytics
// Copyright 2026 The Runetrics Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/runetrics/runetrics

package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/runetrics/runetrics/internal/metrics"
)

// SeriesQuery is the common shape of a time-bucketed series request.
// The range is inclusive on both ends: [Start, End].
type SeriesQuery struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
	Aggregation Aggregation
}

// queryBuilder helps construct SQL queries with filters.
type queryBuilder struct {
	baseQuery string
	args      []interface{}
	filters   []string
}

// newQueryBuilder creates a new query builder with a base query.
// The base query must already contain a WHERE clause (use WHERE 1=1 if it
// has no intrinsic condition).
func newQueryBuilder(baseQuery string) *queryBuilder {
	return &queryBuilder{
		baseQuery: baseQuery,
		args:      make([]interface{}, 0, 8),
		filters:   make([]string, 0, 4),
	}
}

// addRangeFilter adds the inclusive [start, end] time range filter.
func (qb *queryBuilder) addRangeFilter(column string, start, end time.Time) *queryBuilder {
	qb.filters = append(qb.filters, column+" >= ?")
	qb.args = append(qb.args, start)
	qb.filters = append(qb.filters, column+" <= ?")
	qb.args = append(qb.args, end)
	return qb
}

// addFilter adds a custom filter condition.
func (qb *queryBuilder) addFilter(condition string, args ...interface{}) *queryBuilder {
	qb.filters = append(qb.filters, condition)
	qb.args = append(qb.args, args...)
	return qb
}

// build constructs the final query and returns it with args.
func (qb *queryBuilder) build(suffix string) (string, []interface{}) {
	query := qb.baseQuery
	if len(qb.filters) > 0 {
		query += " AND " + strings.Join(qb.filters, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	return query, qb.args
}

// scanFunc is a function that scans a single row into a result type.
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan
// function. The query name feeds the DB latency histogram.
func queryAndScan[T any](ctx context.Context, db *sql.DB, name, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	defer metrics.ObserveQuery(name, time.Now())

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
