package store

import (
	"context"
	"time"

	"loteria/internal/platform/logger"
	"loteria/internal/platform/store/ch"
)

// chConn is what the adapter needs from *ch.CH
type chConn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

func newCHAdapter(c chConn) *clickhouseAdapter { return &clickhouseAdapter{inner: c} }

// clickhouseAdapter adapts *ch.CH to the store.Clickhouse interface.
// log is set when statement logging is on
type clickhouseAdapter struct {
	inner chConn
	log   *logger.Logger
}

var _ Clickhouse = (*clickhouseAdapter)(nil)

func (a *clickhouseAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	start := time.Now()
	err := a.inner.Exec(ctx, sql, args...)
	a.trace("exec", sql, 0, start, err)
	return err
}

func (a *clickhouseAdapter) Insert(ctx context.Context, table string, rows [][]any) error {
	start := time.Now()
	err := a.inner.Insert(ctx, table, rows)
	a.trace("insert", table, len(rows), start, err)
	return err
}

func (a *clickhouseAdapter) trace(kind, stmt string, rows int, start time.Time, err error) {
	if a.log == nil {
		return
	}
	ev := a.log.Debug()
	if err != nil {
		ev = a.log.Warn().Err(err)
	}
	ev.Str("kind", kind).
		Str("stmt", stmt).
		Int("rows", rows).
		Dur("took", time.Since(start)).
		Msg("clickhouse")
}

func (a *clickhouseAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.inner.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &chRows{r: r}, nil
}

func (a *clickhouseAdapter) Ping(ctx context.Context) error { return a.inner.Ping(ctx) }

func (a *clickhouseAdapter) Close() error { return a.inner.Close() }

// chRows wraps ch.Rows as store.Rows
type chRows struct{ r ch.Rows }

func (r *chRows) Next() bool             { return r.r.Next() }
func (r *chRows) Scan(dest ...any) error { return r.r.Scan(dest...) }
func (r *chRows) Err() error             { return r.r.Err() }
func (r *chRows) Close()                 { _ = r.r.Close() }
func (r *chRows) Columns() []string      { return r.r.Columns() }
