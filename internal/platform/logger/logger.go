// Package logger owns the process zerolog root and derives request and
// component scoped children from it
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"shipscan/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type passed around the codebase
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level   string // trace..panic, unknown means debug
	Format  string // console or json
	Service string
	Caller  bool
	Writer  io.Writer // stdout when nil
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:   rc.Get("LEVEL", "debug"),
		Format:  strings.ToLower(rc.Get("FORMAT", "console")),
		Service: rc.Get("SERVICE", ""),
		Caller:  rc.GetBool("CALLER", false),
	}
}

var root atomic.Pointer[Logger]

// Init replaces the root logger
func Init(opt Options) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	c := zerolog.New(w).Level(level(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		c = c.Str("service", opt.Service)
	}
	if opt.Caller {
		c = c.Caller()
	}
	l := c.Logger()
	root.Store(&l)
}

func level(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

// Get returns the root logger, initialising it from the environment on
// first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named returns a child tagged with component
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey uint8

const (
	keyRequest ctxKey = iota
	keySession
)

// WithRequest records the request and session ids picked up by C. Empty
// values are skipped
func WithRequest(ctx context.Context, reqID, sessionID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequest, reqID)
	}
	return WithSession(ctx, sessionID)
}

// WithSession records only the scan session id
func WithSession(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, keySession, sessionID)
}

// C returns a child carrying the ids recorded on ctx
func C(ctx context.Context) *Logger {
	c := Get().With()
	if s, _ := ctx.Value(keyRequest).(string); s != "" {
		c = c.Str("request_id", s)
	}
	if s, _ := ctx.Value(keySession).(string); s != "" {
		c = c.Str("session_id", s)
	}
	l := c.Logger()
	return &l
}
