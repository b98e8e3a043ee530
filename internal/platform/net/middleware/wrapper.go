// Package middleware wraps chi, cors and httprate middleware behind plain
// net/http signatures, plus the in house access log and panic recovery
package middleware

import (
	"compress/flate"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Func is a net/http middleware
type Func = func(http.Handler) http.Handler

// RequestID propagates X-Request-Id or mints one
func RequestID() Func { return chimw.RequestID }

// RealIP trusts X-Forwarded-For and X-Real-IP
func RealIP() Func { return chimw.RealIP }

func NoCache() Func         { return chimw.NoCache }
func RedirectSlashes() Func { return chimw.RedirectSlashes }
func StripSlashes() Func    { return chimw.StripSlashes }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) Func { return chimw.Heartbeat(path) }

// Compress negotiates gzip and deflate at BestSpeed
func Compress() Func { return chimw.NewCompressor(flate.BestSpeed).Handler }

// TimeoutUnlessUpgrade cancels request contexts after d. Websocket upgrades
// are exempt since their context lives as long as the stream
func TimeoutUnlessUpgrade(d time.Duration) Func {
	timeout := chimw.Timeout(d)
	return func(next http.Handler) http.Handler {
		limited := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP answers 429 past requests per window for one client ip
func RateLimitByIP(requests int, window time.Duration) Func {
	return httprate.LimitByIP(requests, window)
}

// CORS allows the station UIs at origins. Empty origins allow any
func CORS(origins []string) Func {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return chicors.Handler(chicors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", SessionHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}
