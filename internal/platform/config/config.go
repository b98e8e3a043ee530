// Package config reads settings from the environment under a key prefix.
// Bad optional values fall back to their default with a warning, missing
// required ones panic at startup
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"shipscan/internal/platform/logger"
)

// Conf is a prefixed view of the environment. The zero value reads
// unprefixed keys
type Conf struct{ prefix string }

// New returns the unprefixed view
func New() Conf { return Conf{} }

// Prefix nests p under the current prefix, e.g. root.Prefix("SHIPSCAN_API_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) (name, val string) {
	name = c.prefix + key
	return name, strings.TrimSpace(os.Getenv(name))
}

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	name, v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", name).Msg("missing required env")
	}
	return v
}

// MayString returns def when key is unset or blank
func (c Conf) MayString(key, def string) string {
	if _, v := c.lookup(key); v != "" {
		return v
	}
	return def
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	name, v := c.lookup(key)
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", v).Interface("default", def).Msg("invalid env value, using default")
		return def
	}
	return out
}

// MayInt parses a base 10 int
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool accepts what strconv.ParseBool accepts
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration parses Go durations like 250ms or 12h
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits on commas and drops blank items. def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	_, v := c.lookup(key)
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
