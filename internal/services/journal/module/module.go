// Package module wires the scan journal. It has no routes
package module

import (
	"shipscan/internal/modkit"
	"shipscan/internal/services/journal/repo"
	"shipscan/internal/services/journal/service"
)

// Ports exposed by the journal module
type Ports struct {
	Sink *service.Sink
}

// Module owns the journal sink
type Module struct {
	modkit.Base
	ports Ports
}

// New builds the sink. Without clickhouse it is disabled
func New(deps modkit.Deps, opt Options) *Module {
	log := deps.Named("journal")
	var r repo.Repo
	if deps.CH != nil {
		r = repo.NewCH(deps.CH, opt.Table)
	} else {
		log.Info().Msg("clickhouse not configured, scan journal disabled")
	}
	return &Module{
		Base:  modkit.Build(nil, modkit.WithName("journal")),
		ports: Ports{Sink: service.New(r, opt.sinkConfig(), log)},
	}
}

// Sink returns the batching sink, which must be supervised to drain
func (m *Module) Sink() *service.Sink { return m.ports.Sink }

// Ports returns Ports
func (m *Module) Ports() any { return m.ports }
