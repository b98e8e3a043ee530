package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	perr "shipscan/internal/platform/errors"
	"shipscan/internal/platform/metrics"
	"shipscan/internal/services/api/scan/domain"
)

// Config tunes session behaviour
type Config struct {
	IdleTTL          time.Duration // sessions untouched this long are closed
	SweepEvery       time.Duration
	CommitTimeout    time.Duration // per store round trip
	EventRing        int           // events kept per session
	SubscriberBuffer int
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		IdleTTL:          12 * time.Hour,
		SweepEvery:       time.Minute,
		CommitTimeout:    10 * time.Second,
		EventRing:        200,
		SubscriberBuffer: 64,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.IdleTTL <= 0 {
		c.IdleTTL = d.IdleTTL
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = d.SweepEvery
	}
	if c.CommitTimeout <= 0 {
		c.CommitTimeout = d.CommitTimeout
	}
	if c.EventRing <= 0 {
		c.EventRing = d.EventRing
	}
	if c.SubscriberBuffer <= 0 {
		c.SubscriberBuffer = d.SubscriberBuffer
	}
	return c
}

// Manager owns the live sessions of this process
type Manager struct {
	store domain.Store
	cfg   Config
	log   zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	observer func(domain.Event)
	now      func() time.Time
}

// NewManager returns an empty manager creating sessions over st
func NewManager(st domain.Store, cfg Config, log zerolog.Logger) *Manager {
	if st == nil {
		panic("scan.Manager requires a non nil Store")
	}
	return &Manager{
		store:    st,
		cfg:      cfg.withDefaults(),
		log:      log,
		sessions: map[string]*Session{},
		now:      time.Now,
	}
}

// Observe registers fn to receive every event of every session created afterwards
func (m *Manager) Observe(fn func(domain.Event)) {
	m.mu.Lock()
	m.observer = fn
	m.mu.Unlock()
}

// Create opens a new idle session
func (m *Manager) Create(station string) *Session {
	id := uuid.NewString()
	m.mu.Lock()
	s := newSession(id, station, m.store, m.cfg, m.log.With().Str("session_id", id).Logger(), m.observer)
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SessionsLive.Set(float64(n))
	m.log.Info().Str("session_id", id).Str("station", station).Msg("scan session opened")
	return s
}

// Get returns the session with id
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, perr.NotFoundf("scan session %s not found", id)
	}
	return s, nil
}

// Close ends and forgets the session with id
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return perr.NotFoundf("scan session %s not found", id)
	}
	s.Close()
	metrics.SessionsLive.Set(float64(n))
	return nil
}

// Len is the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs lists live session ids in sorted order
func (m *Manager) IDs() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Sweep closes sessions idle for longer than the configured TTL and returns how many
func (m *Manager) Sweep() int {
	cutoff := m.now().UTC().Add(-m.cfg.IdleTTL)
	var stale []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
		m.log.Info().Str("session_id", s.ID()).Msg("scan session expired")
	}
	metrics.SessionsLive.Set(float64(n))
	return len(stale)
}

// Serve sweeps idle sessions until ctx ends, then closes every session
func (m *Manager) Serve(ctx context.Context) error {
	t := time.NewTicker(m.cfg.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return ctx.Err()
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Manager) String() string { return "scan-sessions" }

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
	metrics.SessionsLive.Set(0)
}
