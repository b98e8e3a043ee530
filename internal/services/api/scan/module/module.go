// Package module mounts scan sessions on the API
package module

import (
	"shipscan/internal/modkit"
	"shipscan/internal/modkit/httpkit"
	"shipscan/internal/modkit/repokit"
	scandom "shipscan/internal/services/api/scan/domain"
	scanhttp "shipscan/internal/services/api/scan/http"
	scanrepo "shipscan/internal/services/api/scan/repo"
	scansvc "shipscan/internal/services/api/scan/service"
)

// Ports is what the scan module offers to other modules
type Ports struct {
	Sessions scandom.ServicePort
	Manager  *scansvc.Manager
}

// Module serves /scan
type Module struct {
	modkit.Base
	ports Ports
}

// New builds the scan service over deps.PG. opt usually comes from FromConfig
func New(deps modkit.Deps, opt Options, opts ...modkit.Option) *Module {
	db := repokit.WithBeginHooks(deps.PG, scanrepo.StatementTimeout(opt.StatementTimeout))
	svc := scansvc.New(db, scanrepo.NewPG(), opt.sessionConfig(), deps.Named("scan"))

	m := &Module{ports: Ports{Sessions: svc, Manager: svc.Sessions()}}
	m.Base = modkit.Build(func(r httpkit.Router) {
		scanhttp.Register(r, svc, scanhttp.Options{PacketsPerSecond: opt.PacketsPerSecond})
	}, append([]modkit.Option{modkit.WithName("scan"), modkit.WithPrefix("/scan")}, opts...)...)
	return m
}

// Ports returns Ports
func (m *Module) Ports() any { return m.ports }

// Sessions returns the session manager, which must be supervised for idle eviction
func (m *Module) Sessions() *scansvc.Manager { return m.ports.Manager }
