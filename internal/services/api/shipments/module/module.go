// Package module mounts shipments and boxes on the API
package module

import (
	"shipscan/internal/modkit"
	"shipscan/internal/modkit/httpkit"
	shiphttp "shipscan/internal/services/api/shipments/http"
	shiprepo "shipscan/internal/services/api/shipments/repo"
	shipsvc "shipscan/internal/services/api/shipments/service"
)

// Module serves /shipments. Its ports are the shipments service
type Module struct {
	modkit.Base
	svc shipsvc.Service
}

// New builds the shipments service over deps.PG
func New(deps modkit.Deps, opt Options, opts ...modkit.Option) *Module {
	svc := shipsvc.New(deps.PG, shiprepo.NewPG(), shipsvc.Passwords{
		Shipment: opt.DeletePassword,
		Box:      opt.BoxDeletePassword,
	})
	return &Module{
		Base: modkit.Build(func(r httpkit.Router) { shiphttp.Register(r, svc) },
			append([]modkit.Option{modkit.WithName("shipments"), modkit.WithPrefix("/shipments")}, opts...)...),
		svc: svc,
	}
}

// Ports returns the shipments service
func (m *Module) Ports() any { return m.svc }
