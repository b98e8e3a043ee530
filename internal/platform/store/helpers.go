package store

import (
	"context"
	"errors"

	perr "shipscan/internal/platform/errors"
)

// ErrTooManyRows is returned by One when more than one row matches
var ErrTooManyRows = errors.New("store: more than one row")

// Scalar scans the single column of a single row
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// One expects exactly one row. None is perr.ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	out, err := collect(ctx, q, scan, 2, sql, args)
	switch {
	case err != nil:
		return zero, err
	case len(out) == 0:
		return zero, perr.ErrNotFound
	case len(out) > 1:
		return zero, ErrTooManyRows
	}
	return out[0], nil
}

// Many scans every row. No rows is a nil slice and no error
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	return collect(ctx, q, scan, -1, sql, args)
}

// collect scans at most limit rows, all of them when limit is negative
func collect[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), limit int, sql string, args []any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for (limit < 0 || len(out) < limit) && rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
