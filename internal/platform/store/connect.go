package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"shipscan/internal/platform/logger"
	"shipscan/internal/platform/store/pg"
)

// connectPG opens the pool and waits for the first successful ping. The
// pool is pinged directly so retries stay out of the SQL trace
func connectPG(ctx context.Context, app string, cfg PGConfig, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.URL,
		MaxConns: cfg.MaxConns,
		SlowMs:   cfg.SlowQueryMs,
		AppName:  app,
	}, tracer)
	if err != nil {
		return nil, err
	}

	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, cfg.pingTimeout())
		defer cancel()
		return p.Pool.Ping(pctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("postgres not ready")
	}
	if err := backoff.RetryNotify(ping, connectBackoff(ctx, cfg.retries()), notify); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

func connectBackoff(ctx context.Context, retries uint64) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 150 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}
