// Package repo writes scan events to clickhouse
package repo

import (
	"context"
	"fmt"

	"shipscan/internal/platform/store"
	scandom "shipscan/internal/services/api/scan/domain"
)

// DefaultTable is where scan events land unless configured otherwise
const DefaultTable = "scan_events"

// Repo is the journal store contract
type Repo interface {
	EnsureTable(ctx context.Context) error
	Append(ctx context.Context, events []scandom.Event) error
}

// CH implements Repo on the clickhouse seam
type CH struct {
	db    store.Clickhouse
	table string
}

// NewCH binds the journal to db. An empty table means DefaultTable
func NewCH(db store.Clickhouse, table string) *CH {
	if db == nil {
		panic("journal.Repo requires a non nil clickhouse")
	}
	if table == "" {
		table = DefaultTable
	}
	return &CH{db: db, table: table}
}

// EnsureTable creates the journal table when missing
func (r *CH) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  at          DateTime64(3, 'UTC'),
  session_id  String,
  seq         UInt64,
  kind        LowCardinality(String),
  reject      LowCardinality(String),
  message     String,
  barcode     String,
  code        String,
  row_id      String,
  changes     UInt64,
  cue         LowCardinality(String)
)
ENGINE = MergeTree
PARTITION BY toYYYYMM(at)
ORDER BY (session_id, seq)
`, r.table)
	if err := r.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("journal: ensure table %s: %w", r.table, err)
	}
	return nil
}

// Append writes events in one native batch
func (r *CH) Append(ctx context.Context, events []scandom.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []any{
			ev.At,
			ev.SessionID,
			ev.Seq,
			string(ev.Kind),
			string(ev.Reject),
			ev.Message,
			ev.Barcode,
			ev.Code,
			ev.RowID,
			ev.Changes,
			string(ev.Cue),
		})
	}
	return r.db.Insert(ctx, r.table, rows)
}

var _ Repo = (*CH)(nil)
