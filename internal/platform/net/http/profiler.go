package http

import (
	stdhttp "net/http"

	mw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves pprof under prefix, e.g. /debug/pprof/
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	r.Handle(prefix+"/*", stdhttp.StripPrefix(prefix, mw.Profiler()))
}
