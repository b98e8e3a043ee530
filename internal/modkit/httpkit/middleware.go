package httpkit

import (
	"net/http"
	"time"

	"shipscan/internal/platform/config"
	"shipscan/internal/platform/net/middleware"
)

// CommonStack is the middleware every versioned route runs behind. cfg is
// the service scope: CORS_ORIGINS, REQUEST_TIMEOUT, SLOW_REQUEST
func CommonStack(cfg config.Conf) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.NoCache(),

		middleware.RequestContext,
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: cfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
		}),

		middleware.CORS(cfg.MayCSV("CORS_ORIGINS", nil)),
		middleware.Compress(),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
		middleware.TimeoutUnlessUpgrade(cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second)),
	}
}
