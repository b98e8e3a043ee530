package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"shipscan/internal/platform/config"
)

const skeleton = `{"openapi":"3.0.3","info":{"title":"shipscan API","version":"0.0.0"},"paths":{}}`

var (
	docMu  sync.RWMutex
	source = func() string { return skeleton }
)

// SetDoc replaces the spec source. Generated swag docs call it from init,
// without them a skeleton spec is served
func SetDoc(read func() string) {
	docMu.Lock()
	defer docMu.Unlock()
	source = read
}

func readDoc() string {
	docMu.RLock()
	defer docMu.RUnlock()
	return source()
}

// errorExamples document the envelope for statuses every route can return
var errorExamples = map[string]struct {
	status string
	code   int
	msg    string
}{
	"400": {"Bad Request", 8, "packets is required"},
	"409": {"Conflict", 4, "box belongs to another shipment"},
	"500": {"Internal Server Error", 1, "internal error"},
}

// serveDocJSON serves the spec as OpenAPI 3.0.3 with the error envelope
// attached to every operation
func serveDocJSON(cfg config.Conf) http.HandlerFunc {
	suffix := cfg.MayString("DOCS_TITLE_SUFFIX", "")
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(readDoc()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		normalize(spec, "/api/v1", suffix)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

func normalize(spec map[string]any, server, titleSuffix string) {
	// swagger-ui cannot render 3.1 and swag emits 2.0
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); v == "" || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": server}}
	}
	if info, ok := spec["info"].(map[string]any); ok && titleSuffix != "" {
		if title, ok := info["title"].(string); ok {
			info["title"] = title + " " + titleSuffix
		}
	}

	child(child(spec, "components"), "schemas")["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer"},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}

	paths, _ := spec["paths"].(map[string]any)
	for _, item := range paths {
		ops, _ := item.(map[string]any)
		for _, op := range ops {
			op, ok := op.(map[string]any)
			if !ok {
				continue
			}
			responses := child(op, "responses")
			for status, ex := range errorExamples {
				if _, documented := responses[status]; documented {
					continue
				}
				responses[status] = map[string]any{
					"description": ex.status,
					"content": map[string]any{"application/json": map[string]any{
						"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
						"example": map[string]any{"status": ex.status, "code": ex.code, "error": ex.msg},
					}},
				}
			}
		}
	}
}

// child returns m[key] as a map, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
