// Package api provides the HTTP API for the application
package api

import (
	"shipscan/internal/platform/config"
	"shipscan/internal/platform/logger"
	phttp "shipscan/internal/platform/net/http"
	"shipscan/internal/platform/store"

	"shipscan/internal/modkit"
	"shipscan/internal/modkit/httpkit"
	"shipscan/internal/modkit/module"
	"shipscan/internal/modkit/swaggerkit"

	metamod "shipscan/internal/services/api/meta/module"
	scanmod "shipscan/internal/services/api/scan/module"
	scansvc "shipscan/internal/services/api/scan/service"
	shipmentsmod "shipscan/internal/services/api/shipments/module"
	journalmod "shipscan/internal/services/journal/module"
	journalsvc "shipscan/internal/services/journal/service"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Background holds the long running parts behind the routes. The caller
// supervises them, routes keep working only while they run
type Background struct {
	Sessions *scansvc.Manager
	Journal  *journalsvc.Sink
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) Background {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	// journal first so every session event reaches it
	journal := journalmod.New(deps, journalmod.FromConfig(deps.Cfg))
	scan := scanmod.New(deps, scanmod.FromConfig(deps.Cfg))
	sessions := scan.Sessions()
	sink := journal.Sink()
	sessions.Observe(sink.Observe)

	mods := []modkit.Module{
		metamod.New(deps, runtimeProbes()),
		scan,
		shipmentsmod.New(deps, shipmentsmod.FromConfig(deps.Cfg)),
		journal,
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(deps.Cfg.Prefix("SHIPSCAN_API_")), func(api httpkit.Router) {
		swaggerkit.Mount(r, deps.Cfg.Prefix("SHIPSCAN_API_"), opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
		phttp.MountMetrics(r, "/metrics", opt.EnableMetrics)

		for _, m := range mods {
			module.Register(m)
			m.MountRoutes(api)
		}
	})

	return Background{Sessions: sessions, Journal: sink}
}

// runtimeProbes reads the scan and journal ports from the registry on each
// call, so meta keeps no reference to either module
func runtimeProbes() metamod.Runtime {
	return metamod.Runtime{
		LiveSessions: func() int {
			p, ok := module.Lookup[scanmod.Ports]("scan")
			if !ok || p.Manager == nil {
				return 0
			}
			return p.Manager.Len()
		},
		JournalState: func() string {
			p, ok := module.Lookup[journalmod.Ports]("journal")
			if !ok || p.Sink == nil {
				return journalsvc.CauseDisabled
			}
			return p.Sink.State()
		},
	}
}
