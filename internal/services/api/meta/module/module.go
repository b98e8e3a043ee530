// Package module mounts the meta endpoints
package module

import (
	"context"
	"time"

	"shipscan/internal/modkit"
	"shipscan/internal/modkit/httpkit"
	"shipscan/internal/platform/store"
	metahttp "shipscan/internal/services/api/meta/http"
)

// Runtime exposes in process probes on /meta/runtime
type Runtime struct {
	LiveSessions func() int
	JournalState func() string
}

// Module serves /meta
type Module struct{ modkit.Base }

// New mounts health, readiness, version and runtime probes. Postgres is a
// required check, clickhouse an optional one
func New(deps modkit.Deps, rt Runtime, opts ...modkit.Option) *Module {
	d := metahttp.Deps{
		ServiceName: "shipscan-api",
		StartedAt:   time.Now(),
		Checks: []metahttp.Check{
			{Name: "pg", Ping: pingOf(deps.PG)},
			{Name: "ch", Optional: true, Ping: pingOf(deps.CH)},
		},
		LiveSessions: rt.LiveSessions,
		JournalState: rt.JournalState,
	}
	return &Module{modkit.Build(func(r httpkit.Router) { metahttp.Register(r, d) },
		append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)}
}

// Ports is nil, meta offers nothing to other modules
func (m *Module) Ports() any { return nil }

func pingOf(v any) func(context.Context) error {
	if p, ok := v.(store.Pinger); ok {
		return p.Ping
	}
	return nil
}
