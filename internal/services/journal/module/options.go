package module

import (
	"time"

	"shipscan/internal/platform/config"
	"shipscan/internal/services/journal/repo"
	"shipscan/internal/services/journal/service"
)

// Options holds configuration settings for the journal module
type Options struct {
	Table          string
	Batch          int
	FlushEvery     time.Duration
	Buffer         int
	WriteTimeout   time.Duration
	TripAfter      int
	BreakerCooloff time.Duration
}

// FromConfig reads JOURNAL_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	jc := cfg.Prefix("JOURNAL_")
	d := service.DefaultConfig()
	return Options{
		Table:          jc.MayString("TABLE", repo.DefaultTable),
		Batch:          jc.MayInt("BATCH", d.Batch),
		FlushEvery:     jc.MayDuration("FLUSH", d.FlushEvery),
		Buffer:         jc.MayInt("BUFFER", d.Buffer),
		WriteTimeout:   jc.MayDuration("WRITE_TIMEOUT", d.WriteTimeout),
		TripAfter:      jc.MayInt("TRIP_AFTER", int(d.TripAfter)),
		BreakerCooloff: jc.MayDuration("BREAKER_COOLOFF", d.BreakerCooloff),
	}
}

func (o Options) sinkConfig() service.Config {
	c := service.Config{
		Batch:          o.Batch,
		FlushEvery:     o.FlushEvery,
		Buffer:         o.Buffer,
		WriteTimeout:   o.WriteTimeout,
		BreakerCooloff: o.BreakerCooloff,
	}
	if o.TripAfter > 0 {
		c.TripAfter = uint32(o.TripAfter)
	}
	return c
}
