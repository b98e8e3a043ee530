package store

import (
	"context"
	"errors"

	"shipscan/internal/platform/store/ch"
)

// chConn is what the adapter needs from *ch.CH
type chConn interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// chAdapter narrows a clickhouse connection to the Clickhouse seam
type chAdapter struct{ c chConn }

var (
	_ Clickhouse = (*chAdapter)(nil)
	_ Pinger     = (*chAdapter)(nil)
)

func (a *chAdapter) Insert(ctx context.Context, table string, rows [][]any) error {
	return a.c.Insert(ctx, table, rows)
}

func (a *chAdapter) Exec(ctx context.Context, sql string, args ...any) error {
	return a.c.Exec(ctx, sql, args...)
}

func (a *chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

func (a *chAdapter) Ping(ctx context.Context) error {
	if a == nil || a.c == nil {
		return errors.New("store: clickhouse not open")
	}
	return a.c.Ping(ctx)
}

func (a *chAdapter) Close() error { return a.c.Close() }

// chRows drops the Close error, store.Rows has none
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
