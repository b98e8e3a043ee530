package module

import (
	"time"

	"shipscan/internal/platform/config"
	"shipscan/internal/services/api/scan/service"
)

// Options controls session lifetimes and store limits
type Options struct {
	IdleTTL          time.Duration // sessions untouched this long are closed
	SweepEvery       time.Duration
	CommitTimeout    time.Duration // one insert including the duplicate lookup
	StatementTimeout time.Duration // set local statement_timeout, 0 leaves the server default
	EventRing        int
	PacketsPerSecond int // per client ip on the packets endpoint, 0 disables
}

// FromConfig reads SCAN_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SCAN_")
	d := service.DefaultConfig()
	return Options{
		IdleTTL:          sc.MayDuration("SESSION_IDLE_TTL", d.IdleTTL),
		SweepEvery:       sc.MayDuration("SWEEP_EVERY", d.SweepEvery),
		CommitTimeout:    sc.MayDuration("COMMIT_TIMEOUT", d.CommitTimeout),
		StatementTimeout: sc.MayDuration("STATEMENT_TIMEOUT", 5*time.Second),
		EventRing:        sc.MayInt("EVENT_RING", d.EventRing),
		PacketsPerSecond: sc.MayInt("PACKETS_RPS", 50),
	}
}

func (o Options) sessionConfig() service.Config {
	return service.Config{
		IdleTTL:       o.IdleTTL,
		SweepEvery:    o.SweepEvery,
		CommitTimeout: o.CommitTimeout,
		EventRing:     o.EventRing,
	}
}
