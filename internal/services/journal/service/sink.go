// Package service batches scan events into the journal store
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"shipscan/internal/platform/metrics"
	scandom "shipscan/internal/services/api/scan/domain"
	"shipscan/internal/services/journal/repo"
)

// Drop causes reported on the journal drop counter
const (
	CauseBufferFull  = "buffer_full"
	CauseBreakerOpen = "breaker_open"
	CauseWriteError  = "write_error"
	CauseDisabled    = "disabled"
)

// Config tunes batching and the circuit breaker
type Config struct {
	Batch          int           // flush when this many events are buffered
	FlushEvery     time.Duration // flush at least this often
	Buffer         int           // pending events before Observe drops
	WriteTimeout   time.Duration
	TripAfter      uint32 // consecutive failed flushes that open the breaker
	BreakerCooloff time.Duration
}

// DefaultConfig returns the sink defaults
func DefaultConfig() Config {
	return Config{
		Batch:          256,
		FlushEvery:     2 * time.Second,
		Buffer:         4096,
		WriteTimeout:   5 * time.Second,
		TripAfter:      3,
		BreakerCooloff: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Batch <= 0 {
		c.Batch = d.Batch
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = d.FlushEvery
	}
	if c.Buffer <= 0 {
		c.Buffer = d.Buffer
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.TripAfter == 0 {
		c.TripAfter = d.TripAfter
	}
	if c.BreakerCooloff <= 0 {
		c.BreakerCooloff = d.BreakerCooloff
	}
	return c
}

// Sink buffers events from sessions and writes them in batches. A Sink
// without a repo accepts and discards everything
type Sink struct {
	repo repo.Repo
	cfg  Config
	in   chan scandom.Event
	cb   *gobreaker.CircuitBreaker[struct{}]
	log  zerolog.Logger
}

// New builds a sink writing to r. A nil r yields a disabled sink
func New(r repo.Repo, cfg Config, log zerolog.Logger) *Sink {
	cfg = cfg.withDefaults()
	s := &Sink{repo: r, cfg: cfg, log: log}
	if r == nil {
		return s
	}
	s.in = make(chan scandom.Event, cfg.Buffer)
	s.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "scan-journal",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooloff,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("journal breaker state")
		},
	})
	return s
}

// Enabled reports whether events reach a store
func (s *Sink) Enabled() bool { return s.repo != nil }

// Observe queues ev without blocking the session
func (s *Sink) Observe(ev scandom.Event) {
	if s.repo == nil {
		return
	}
	select {
	case s.in <- ev:
	default:
		metrics.JournalDroppedTotal.WithLabelValues(CauseBufferFull).Inc()
	}
}

// Serve drains the buffer until ctx ends, then flushes what is left
func (s *Sink) Serve(ctx context.Context) error {
	if s.repo == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := s.ensureTable(ctx); err != nil {
		s.log.Warn().Err(err).Msg("journal table check failed, writes will be retried")
	}

	t := time.NewTicker(s.cfg.FlushEvery)
	defer t.Stop()

	buf := make([]scandom.Event, 0, s.cfg.Batch)
	for {
		select {
		case ev := <-s.in:
			buf = append(buf, ev)
			if len(buf) >= s.cfg.Batch {
				buf = s.flush(buf)
			}
		case <-t.C:
			buf = s.flush(buf)
		case <-ctx.Done():
			s.flush(s.drainPending(buf))
			return ctx.Err()
		}
	}
}

// String names the sink in supervisor events
func (s *Sink) String() string { return "scan-journal" }

// State reports the breaker state, "disabled" without a store
func (s *Sink) State() string {
	if s.cb == nil {
		return CauseDisabled
	}
	return s.cb.State().String()
}

func (s *Sink) drainPending(buf []scandom.Event) []scandom.Event {
	for {
		select {
		case ev := <-s.in:
			buf = append(buf, ev)
		default:
			return buf
		}
	}
}

func (s *Sink) ensureTable(ctx context.Context) error {
	tctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()
	return s.repo.EnsureTable(tctx)
}

// flush writes buf through the breaker and returns buf emptied for reuse
func (s *Sink) flush(buf []scandom.Event) []scandom.Event {
	if len(buf) == 0 {
		return buf
	}
	n := float64(len(buf))
	_, err := s.cb.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		defer cancel()
		return struct{}{}, s.repo.Append(ctx, buf)
	})
	switch {
	case err == nil:
		metrics.JournalWrittenTotal.Add(n)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.JournalDroppedTotal.WithLabelValues(CauseBreakerOpen).Add(n)
	default:
		metrics.JournalDroppedTotal.WithLabelValues(CauseWriteError).Add(n)
		s.log.Warn().Err(err).Int("events", len(buf)).Msg("journal write failed")
	}
	return buf[:0]
}
