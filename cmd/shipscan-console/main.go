// Command shipscan-console is a terminal scanning station. The scanner types into
// stdin, one packet per line
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shipscan/internal/modkit"
	"shipscan/internal/modkit/module"
	"shipscan/internal/platform/config"
	"shipscan/internal/platform/logger"
	"shipscan/internal/platform/store"

	scandom "shipscan/internal/services/api/scan/domain"
	scanmod "shipscan/internal/services/api/scan/module"
	"shipscan/internal/services/station"
)

var (
	flagDB        string
	flagState     string
	flagStation   string
	flagNoBell    bool
	flagLogLevel  string
	defaultDBURL  = config.New().Prefix("SERVICE_PGSQL_").MayString("DBURL", "")
	defaultHostID = hostname()
)

var rootCmd = &cobra.Command{
	Use:   "shipscan-console",
	Short: "Terminal scanning station",
	Long: "Reads scanner packets from stdin and records them into the selected shipment and box.\n" +
		"Commands: /shipment <id>, /box <id>, /mode on|off, /ack, /cancel, /status, /where <code>, /quit",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withScan(ctx, func(svc scandom.ServicePort) error {
			states, err := station.OpenStore(flagState)
			if err != nil {
				return err
			}
			defer func() { _ = states.Close() }()

			out := station.NewPrinter(cmd.OutOrStdout())
			out.Bell = !flagNoBell
			console := station.NewConsole(svc, states, out)
			if err := console.Start(ctx, flagStation); err != nil {
				return err
			}
			defer func() { _ = console.Close(context.Background()) }()

			return readLines(ctx, cmd.InOrStdin(), func(line string) error {
				err := console.Handle(ctx, line)
				if err != nil && !errors.Is(err, station.ErrQuit) {
					out.Errorf("%v", err)
					return nil
				}
				return err
			})
		})
	},
}

var whereCmd = &cobra.Command{
	Use:   "where [code]",
	Short: "Show where a marking code was last recorded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScan(cmd.Context(), func(svc scandom.ServicePort) error {
			loc, err := svc.Where(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shipment: %s\nbox:      %s\nseen:     %s\n",
				loc.ShipmentLabel, loc.BoxLabel, loc.LastSeenAt.Format("2006-01-02 15:04:05"))
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", defaultDBURL, "postgres url (default from SERVICE_PGSQL_DBURL)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level")
	rootCmd.Flags().StringVar(&flagState, "state", "shipscan-station.db", "local file holding the last selection")
	rootCmd.Flags().StringVar(&flagStation, "station", defaultHostID, "station name reported on the session")
	rootCmd.Flags().BoolVar(&flagNoBell, "no-bell", false, "do not ring the terminal bell on errors")
	rootCmd.AddCommand(whereCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withScan opens postgres and runs fn against an in process scan service
func withScan(ctx context.Context, fn func(scandom.ServicePort) error) error {
	if flagDB == "" {
		return errors.New("--db or SERVICE_PGSQL_DBURL is required")
	}
	lvl, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	l := logger.Get().Level(lvl)

	st, err := store.Open(ctx, store.Config{
		AppName: "shipscan-console",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         flagDB,
			MaxConns:    2,
			SlowQueryMs: 500,
		},
	}, store.WithLogger(l))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	root := config.New()
	mod := scanmod.New(modkit.Deps{Cfg: root, PG: st.PG, Log: l}, scanmod.FromConfig(root))
	ports := module.MustPortsOf[scanmod.Ports](mod)

	// the manager closes the session when mctx ends
	mctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ports.Manager.Serve(mctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	return fn(ports.Sessions)
}

// readLines calls fn per stdin line until EOF, ctx ends or fn returns an error.
// station.ErrQuit counts as a clean stop
func readLines(ctx context.Context, in io.Reader, fn func(string) error) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 4096), 64*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			if err := fn(line); err != nil {
				if errors.Is(err, station.ErrQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "station"
	}
	return h
}
