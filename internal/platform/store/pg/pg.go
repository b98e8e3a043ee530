// Package pg owns the pgx pool and the SQL trace logger
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool. Zero fields keep pgxpool defaults
type Config struct {
	URL         string
	MaxConns    int32
	MinConns    int32
	HealthCheck time.Duration
	SlowMs      int
	AppName     string // application_name on every connection
}

// PG is an open pool plus the tracer statements should report to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var newPool = pgxpool.NewWithConfig

// Open builds the pool. It does not wait for the server, callers ping
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.HealthCheck > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheck
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}

	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("pg: new pool: %w", err)
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close is safe on a nil PG or pool
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
