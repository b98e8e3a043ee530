// Package raw reads the environment without logging. The logger reads its
// own settings through it, since config logs through the logger
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a prefixed view of the environment
type Conf struct{ prefix string }

// New returns the unprefixed view
func New() Conf { return Conf{} }

// Prefix nests p under the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Get returns the trimmed value or def
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.prefix + key)); v != "" {
		return v
	}
	return def
}

// GetBool also accepts yes and no. Anything unparsable is def
func (c Conf) GetBool(key string, def bool) bool {
	switch v := strings.ToLower(c.Get(key, "")); v {
	case "":
		return def
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	default:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
}
