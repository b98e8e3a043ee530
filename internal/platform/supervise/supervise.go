// Package supervise runs long lived services under a suture tree
package supervise

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// Config mirrors the suture failure knobs
type Config struct {
	FailureThreshold float64
	FailureDecay     float64 // seconds
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

// DefaultConfig returns the suture defaults
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay <= 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff <= 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// Tree is a single level supervisor
type Tree struct {
	root *suture.Supervisor
	cfg  Config
}

// New builds a tree that logs its events to log
func New(name string, cfg Config, log zerolog.Logger) *Tree {
	cfg = cfg.withDefaults()
	root := suture.New(name, suture.Spec{
		EventHook:        Hook(log),
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	})
	return &Tree{root: root, cfg: cfg}
}

// Add registers services, nil entries are skipped
func (t *Tree) Add(svcs ...suture.Service) {
	for _, s := range svcs {
		if s != nil {
			t.root.Add(s)
		}
	}
}

// Serve blocks until ctx ends. A canceled ctx is a clean stop
func (t *Tree) Serve(ctx context.Context) error {
	err := t.root.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Unstopped lists services that ignored the shutdown timeout
func (t *Tree) Unstopped() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

// Hook turns suture events into log lines
func Hook(log zerolog.Logger) suture.EventHook {
	return func(ev suture.Event) {
		var e *zerolog.Event
		switch ev.Type() {
		case suture.EventTypeServicePanic:
			e = log.Error()
		case suture.EventTypeResume:
			e = log.Info()
		default:
			e = log.Warn()
		}
		e.Fields(ev.Map()).Msg(ev.String())
	}
}
