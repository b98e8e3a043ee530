// Package strings holds the string checks module wiring panics on
package strings

import std "strings"

// MustString returns s, panicking with name when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes a mount path like "scan/" to "/scan". The root
// path is not a valid prefix
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), "/")
	if s == "/" {
		panic("root path is required")
	}
	return s
}
