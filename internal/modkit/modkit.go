// Package modkit is the module seam: shared deps, the module contract and
// a Base that mounts a module's routes under its prefix
package modkit

import (
	"net/http"

	"shipscan/internal/modkit/httpkit"
	str "shipscan/internal/platform/strings"
)

// Module is what the API mounts
type Module interface {
	Name() string
	Prefix() string
	Ports() any
	MountRoutes(r httpkit.Router)
}

// Option overrides a module default
type Option func(*Base)

// WithName renames the module in logs and the port registry
func WithName(name string) Option { return func(b *Base) { b.name = name } }

// WithPrefix moves the module's mount point
func WithPrefix(prefix string) Option { return func(b *Base) { b.prefix = prefix } }

// WithMiddlewares adds middleware that runs only for this module's routes
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mw = append(b.mw, mw...) }
}

// Base implements Name, Prefix and MountRoutes. Embed it and supply Ports
type Base struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	routes func(httpkit.Router)
}

// Build applies opts in order over an empty Base. routes may be nil for
// modules without endpoints
func Build(routes func(httpkit.Router), opts ...Option) Base {
	b := Base{routes: routes}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Name panics on an unnamed module
func (b Base) Name() string { return str.MustString(b.name, "module name") }

// Prefix is the normalized mount point, "" when the module has no routes
func (b Base) Prefix() string {
	if b.routes == nil {
		return ""
	}
	return str.MustPrefix(b.prefix)
}

// MountRoutes registers the module under Prefix with its own middleware
func (b Base) MountRoutes(r httpkit.Router) {
	if b.routes == nil {
		return
	}
	r.Route(b.Prefix(), func(rr httpkit.Router) {
		if len(b.mw) > 0 {
			rr.Use(b.mw...)
		}
		b.routes(rr)
	})
}
