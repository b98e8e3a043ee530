package modkit

import (
	"shipscan/internal/modkit/repokit"
	"shipscan/internal/platform/config"
	"shipscan/internal/platform/logger"
	"shipscan/internal/platform/store"
)

// Deps are the shared handles every module is built from. PG and CH are
// nil when the store is not configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Named returns a logger tagged with the module name
func (d Deps) Named(module string) logger.Logger {
	return d.Log.With().Str("module", module).Logger()
}
