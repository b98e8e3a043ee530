package module

import (
	"shipscan/internal/platform/config"
)

// Options holds the passwords that confirm destructive operations
type Options struct {
	DeletePassword    string
	BoxDeletePassword string
}

// FromConfig reads SHIPMENTS_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("SHIPMENTS_")
	return Options{
		DeletePassword:    sc.MayString("DELETE_PASSWORD", "88889999"),
		BoxDeletePassword: sc.MayString("BOX_DELETE_PASSWORD", "000"),
	}
}
