package middleware

import (
	"net/http"
	"runtime/debug"

	perr "shipscan/internal/platform/errors"
	"shipscan/internal/platform/logger"
	pnet "shipscan/internal/platform/net"
	phttp "shipscan/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into a 500 error envelope and logs the
// stack against the request. http.ErrAbortHandler is re-raised
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if id := pnet.RequestID(r.Context()); id != "" {
				w.Header().Set("X-Request-Id", id)
			}
			phttp.RespondError(w, r, perr.PanicErrf("internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
