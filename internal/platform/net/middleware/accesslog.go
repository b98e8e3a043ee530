package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shipscan/internal/platform/logger"
)

// AccessLogOptions tunes AccessLogZerolog
type AccessLogOptions struct {
	Slow time.Duration // warn at or above this, zero never warns
}

// statusWriter records the status and size a handler produced. Flush and
// Hijack pass through so event streams keep working
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := sw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("middleware: hijack not supported")
	}
	sw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// AccessLogZerolog writes one line per request through logger.C. Server
// errors log at error, slow requests at warn
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(sw, r)
			took := time.Since(start)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.C(r.Context())
			ev := log.Info()
			switch {
			case status >= http.StatusInternalServerError:
				ev = log.Error()
			case opt.Slow > 0 && took >= opt.Slow:
				ev = log.Warn()
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				ev = ev.Str("route", rc.RoutePattern())
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", sw.size).
				Dur("took", took).
				Msg("request")
		})
	}
}
