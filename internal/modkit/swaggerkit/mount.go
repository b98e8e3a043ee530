// Package swaggerkit serves the API spec and the swagger UI
package swaggerkit

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"shipscan/internal/platform/config"
	phttp "shipscan/internal/platform/net/http"
)

// Mount serves /api/docs when enabled. cfg supplies DOCS_TITLE_SUFFIX
func Mount(r phttp.Router, cfg config.Conf, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(cfg))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
