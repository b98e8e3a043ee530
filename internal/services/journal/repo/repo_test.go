package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shipscan/internal/platform/store"
	"shipscan/internal/platform/testkit"
	scandom "shipscan/internal/services/api/scan/domain"
)

type fakeCH struct {
	execs   []string
	table   string
	rows    [][]any
	insertE error
}

func (f *fakeCH) Insert(_ context.Context, table string, rows [][]any) error {
	f.table, f.rows = table, rows
	return f.insertE
}
func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execs = append(f.execs, sql)
	return nil
}
func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeCH) Close() error                                              { return nil }

func TestNewCH_Defaults(t *testing.T) {
	testkit.MustPanic(t, func() { NewCH(nil, "") })
	if r := NewCH(&fakeCH{}, ""); r.table != DefaultTable {
		t.Fatalf("table = %s", r.table)
	}
}

func TestEnsureTable_UsesTable(t *testing.T) {
	db := &fakeCH{}
	if err := NewCH(db, "events_x").EnsureTable(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "CREATE TABLE IF NOT EXISTS events_x") {
		t.Fatalf("execs = %q", db.execs)
	}
}

func TestAppend_RowShape(t *testing.T) {
	db := &fakeCH{}
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	err := NewCH(db, "").Append(context.Background(), []scandom.Event{
		{Seq: 4, SessionID: "s", At: at, Kind: scandom.EventCommitted, Barcode: "4601", Code: "KIZ", RowID: "r", Changes: 2, Cue: scandom.CueSuccess},
	})
	if err != nil {
		t.Fatal(err)
	}
	if db.table != DefaultTable || len(db.rows) != 1 || len(db.rows[0]) != 11 {
		t.Fatalf("insert = %s %v", db.table, db.rows)
	}
	if db.rows[0][3] != "committed" || db.rows[0][10] != "success" {
		t.Fatalf("row = %v", db.rows[0])
	}
}

func TestAppend_EmptyAndError(t *testing.T) {
	db := &fakeCH{insertE: errors.New("down")}
	r := NewCH(db, "")
	if err := r.Append(context.Background(), nil); err != nil {
		t.Fatalf("empty append: %v", err)
	}
	if err := r.Append(context.Background(), []scandom.Event{{Seq: 1}}); err == nil {
		t.Fatal("want insert error")
	}
}
