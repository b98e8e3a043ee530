package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shipscan/internal/platform/store/pg"
)

// pgxQuerier is the statement surface shared by the pool and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced reports every statement to tracer. A negative slowUS never marks
// a statement slow
type traced struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slowUS int64
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	done := t.begin(ctx, sql, args)
	ct, err := t.q.Exec(ctx, sql, args...)
	done(err)
	return ct, err
}

// Query is reported when the result set opens, iteration is not timed
func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	done := t.begin(ctx, sql, args)
	rs, err := t.q.Query(ctx, sql, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return pgRows{rs}, nil
}

// QueryRow is reported after Scan so scan errors are included
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	done := t.begin(ctx, sql, args)
	return pgRow{Row: t.q.QueryRow(ctx, sql, args...), done: done}
}

func (t traced) begin(ctx context.Context, sql string, args []any) func(error) {
	if t.tracer == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		us := time.Since(start).Microseconds()
		t.tracer.OnQuery(ctx, pg.QueryEvent{
			SQL:       sql,
			Args:      args,
			ElapsedUS: us,
			Err:       err,
			Slow:      t.slowUS >= 0 && us >= t.slowUS,
		})
	}
}

// pgAdapter is the TxRunner repos receive
type pgAdapter struct {
	traced
	p *pg.PG
}

var (
	_ TxRunner = (*pgAdapter)(nil)
	_ Pinger   = (*pgAdapter)(nil)
)

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{
		traced: traced{q: p.Pool, tracer: p.Tracer, slowUS: int64(p.SlowMs) * 1000},
		p:      p,
	}
}

// Tx commits when fn returns nil and rolls back otherwise. Statements inside
// are traced like any other
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(a.inTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (a *pgAdapter) inTx(tx pgx.Tx) traced {
	in := a.traced
	in.q = tx
	return in
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("store: postgres not open")
	}
	var n int
	return a.QueryRow(ctx, "select 1").Scan(&n)
}

func (a *pgAdapter) Close() error {
	a.p.Close()
	return nil
}

type pgRow struct {
	pgx.Row
	done func(error)
}

func (r pgRow) Scan(dest ...any) error {
	err := r.Row.Scan(dest...)
	r.done(err)
	return err
}

type pgRows struct{ pgx.Rows }

func (r pgRows) Columns() []string {
	fds := r.FieldDescriptions()
	names := make([]string, 0, len(fds))
	for _, fd := range fds {
		names = append(names, fd.Name)
	}
	return names
}
