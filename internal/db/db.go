// Package db owns the postgres schema shipscan runs against
package db

import (
	"context"
	_ "embed"
	"fmt"

	"shipscan/internal/platform/store"
)

//go:embed schema.sql
var schema string

// lockKey serialises concurrent migrations across processes
const lockKey int64 = 0x73686970

// Schema returns the embedded DDL
func Schema() string { return schema }

// Migrate applies the schema inside one transaction. Every statement is idempotent
func Migrate(ctx context.Context, db store.TxRunner) error {
	return db.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, "select pg_advisory_xact_lock($1)", lockKey); err != nil {
			return fmt.Errorf("migrate: lock: %w", err)
		}
		if _, err := q.Exec(ctx, schema); err != nil {
			return fmt.Errorf("migrate: apply: %w", err)
		}
		return nil
	})
}
