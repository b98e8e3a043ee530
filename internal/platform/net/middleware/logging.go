package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"shipscan/internal/platform/logger"
	pnet "shipscan/internal/platform/net"
)

// SessionHeader lets scanning stations tag their requests with their session id
const SessionHeader = "X-Scan-Session"

// RequestContext copies the request id and the station's session id into the
// request and logging contexts so handlers and logger.C pick them up
// downstream. Place after RequestID
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, sess := chimw.GetReqID(r.Context()), r.Header.Get(SessionHeader)
		ctx := pnet.WithRequest(r.Context(), reqID, sess)
		ctx = logger.WithRequest(ctx, reqID, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
