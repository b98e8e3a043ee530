package store

import (
	"context"
	"errors"
	"testing"

	"shipscan/internal/platform/store/ch"
)

type fakeCH struct {
	table    string
	rows     [][]any
	execSQL  string
	pingErr  error
	closeErr error
	closed   bool
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.rows = table, rows
	return nil
}

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execSQL = sql
	return nil
}

func (f *fakeCH) Query(context.Context, string, ...any) (ch.Rows, error) {
	return &fakeCHRows{n: 1}, nil
}

func (f *fakeCH) Ping(context.Context) error { return f.pingErr }
func (f *fakeCH) Close() error               { f.closed = true; return f.closeErr }

type fakeCHRows struct {
	n      int
	closed bool
}

func (r *fakeCHRows) Next() bool {
	if r.n == 0 {
		return false
	}
	r.n--
	return true
}
func (r *fakeCHRows) Scan(dest ...any) error {
	*(dest[0].(*uint64)) = 42
	return nil
}
func (r *fakeCHRows) Err() error        { return nil }
func (r *fakeCHRows) Close() error      { r.closed = true; return nil }
func (r *fakeCHRows) Columns() []string { return []string{"count()"} }

func TestCHAdapter_Delegates(t *testing.T) {
	ctx := context.Background()
	f := &fakeCH{}
	a := &chAdapter{c: f}

	rows := [][]any{{"s-1", "box"}, {"s-1", "product"}}
	if err := a.Insert(ctx, "scan_events", rows); err != nil || f.table != "scan_events" || len(f.rows) != 2 {
		t.Fatalf("Insert = %v, %q %d", err, f.table, len(f.rows))
	}
	if err := a.Exec(ctx, "CREATE TABLE x"); err != nil || f.execSQL != "CREATE TABLE x" {
		t.Fatalf("Exec = %v, %q", err, f.execSQL)
	}

	rs, err := a.Query(ctx, "select count() from scan_events")
	if err != nil {
		t.Fatal(err)
	}
	var n uint64
	if !rs.Next() || rs.Scan(&n) != nil || n != 42 {
		t.Fatalf("row = %d", n)
	}
	if cols := rs.Columns(); len(cols) != 1 || cols[0] != "count()" {
		t.Fatalf("cols = %v", cols)
	}
	rs.Close()
	if !rs.(chRows).Rows.(*fakeCHRows).closed {
		t.Fatal("rows not closed")
	}
}

func TestCHAdapter_Ping(t *testing.T) {
	down := errors.New("down")
	if err := (&chAdapter{c: &fakeCH{pingErr: down}}).Ping(context.Background()); !errors.Is(err, down) {
		t.Fatalf("Ping = %v", err)
	}
	var nilAdapter *chAdapter
	if err := nilAdapter.Ping(context.Background()); err == nil {
		t.Fatal("nil adapter Ping should fail")
	}
}
