package pg

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"shipscan/internal/platform/logger"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store adapter runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements at info and slow ones at warn. The logger level is
// pinned to debug so SQL logging does not depend on LOG_LEVEL
func Tracer(l logger.Logger) QueryTracer {
	return logTracer{l: l.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ l logger.Logger }

func (t logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := t.l.Info()
	if ev.Slow {
		e = t.l.Warn()
	}
	e.Float64("took_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", oneLine(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// oneLine collapses whitespace runs so multi line SQL fits a log line
func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }
