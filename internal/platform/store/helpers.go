package store

import (
	"context"
	"errors"

	perr "loteria/internal/platform/errors"

	"github.com/jackc/pgx/v5"
)

// Exec runs a statement and maps pg failures through perr under op
func Exec(ctx context.Context, q RowQuerier, op, sql string, args ...any) (int64, error) {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, perr.WithOp(perr.FromPostgres(err, op), op)
	}
	return tag.RowsAffected(), nil
}

// Scalar queries the first row, first column into T; no rows is ErrorCodeNotFound
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, perr.Wrap(err, perr.ErrorCodeNotFound, "no rows")
		}
		return zero, err
	}
	return v, nil
}

// Many uses a custom scanner to map all rows into []T
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []T
	for rs.Next() {
		item, err := scan(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rs.Err()
}
