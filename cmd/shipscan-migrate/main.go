// Command shipscan-migrate applies the embedded postgres schema
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"shipscan/internal/db"
	"shipscan/internal/platform/logger"
	"shipscan/internal/platform/store"
)

func main() {
	fs := ff.NewFlagSet("shipscan-migrate")
	var (
		dbURL     = fs.StringLong("db", "", "postgres url (or SHIPSCAN_DB)")
		timeout   = fs.DurationLong("timeout", 2*time.Minute, "give up after this long")
		printOnly = fs.BoolLong("print", "print the schema and exit")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("SHIPSCAN")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *printOnly {
		fmt.Print(db.Schema())
		return
	}
	if *dbURL == "" {
		fmt.Fprintf(os.Stderr, "%s\nerror: --db is required\n", ffhelp.Flags(fs))
		os.Exit(1)
	}

	l := logger.Named("migrate")
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "shipscan-migrate",
		PG:      store.PGConfig{Enabled: true, URL: *dbURL, MaxConns: 1},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() { _ = st.Close(context.Background()) }()

	start := time.Now()
	if err := db.Migrate(ctx, st.PG); err != nil {
		l.Error().Err(err).Msg("migration failed")
		_ = st.Close(context.Background())
		os.Exit(1)
	}
	l.Info().Dur("took", time.Since(start)).Msg("schema applied")
}
