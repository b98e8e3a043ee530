// Package store opens the optional postgres and clickhouse backends and hands
// repos the narrow seams they query through
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"shipscan/internal/platform/logger"
	chx "shipscan/internal/platform/store/ch"
)

// Store holds whichever backends were enabled. Disabled ones stay nil
type Store struct {
	Log logger.Logger

	PG TxRunner
	CH Clickhouse
}

// Row is a single row result
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set. Close must be called
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier runs statements, inside or outside a transaction
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also open transactions
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam used by the scan journal
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is implemented by both backend adapters
type Pinger interface{ Ping(context.Context) error }

// Option customizes Open
type Option func(*Store)

// WithLogger sets the logger backends log through
func WithLogger(l logger.Logger) Option { return func(s *Store) { s.Log = l } }

// Open connects every enabled backend. On failure anything already opened is
// closed again
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}

	if cfg.PG.Enabled {
		a, err := connectPG(ctx, cfg.AppName, cfg.PG, s.Log)
		if err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
		s.PG = a
	}

	if cfg.CH.Enabled {
		c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, ClientName: cfg.AppName, ClientTag: cfg.CH.ClientTag})
		if err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("store: clickhouse: %w", err)
		}
		s.CH = &chAdapter{c: c}
	}
	return s, nil
}

// Close closes every open backend and joins their errors
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
