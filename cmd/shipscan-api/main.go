// @title         Shipscan API
// @version       0.1.0
// @description   Scan sessions, shipments and boxes for the packing stations

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shipscan/internal/platform/config"
	"shipscan/internal/platform/logger"
	phttp "shipscan/internal/platform/net/http"
	"shipscan/internal/platform/store"
	"shipscan/internal/platform/supervise"

	"shipscan/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (SHIPSCAN_API_*)
	root := config.New()
	apiCfg := root.Prefix("SHIPSCAN_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // optional, the scan journal is off without it

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "shipscan-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			CH: store.CHConfig{
				Enabled:   chURL != "",
				URL:       chURL,
				ClientTag: "api",
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads SHIPSCAN_API_PORT / SHIPSCAN_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	bg := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
		},
	)

	tree := supervise.New("shipscan-api", supervise.DefaultConfig(), *logger.Named("supervisor"))
	tree.Add(srv, bg.Sessions, bg.Journal)

	l.Info().Str("addr", srv.Addr()).Bool("journal", bg.Journal.Enabled()).Msg("shipscan-api starting")
	if err := tree.Serve(ctx); err != nil {
		l.Error().Err(err).Msg("supervisor stopped")
	}
	if rep, err := tree.Unstopped(); err == nil && len(rep) > 0 {
		l.Warn().Int("services", len(rep)).Msg("services did not stop in time")
	}
}
