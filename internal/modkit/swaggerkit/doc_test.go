package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"shipscan/internal/platform/config"
	phttp "shipscan/internal/platform/net/http"
	"shipscan/internal/platform/testkit"
)

const generated = `{
  "swagger": "2.0",
  "info": {"title": "shipscan API", "version": "1.2.0"},
  "paths": {
    "/scan/sessions": {
      "post": {"responses": {"201": {"description": "created"}, "409": {"description": "custom"}}}
    }
  }
}`

func fetch(t *testing.T, enabled bool) *httptest.ResponseRecorder {
	t.Helper()
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), config.New().Prefix("SWAGGERKIT_TEST_"), enabled)
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	return rr
}

func TestDocJSON_Normalizes(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &source, func() string { return generated })
	t.Setenv("SWAGGERKIT_TEST_DOCS_TITLE_SUFFIX", "(staging)")

	rr := fetch(t, true)
	if rr.Code != http.StatusOK || rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("code = %d headers = %v", rr.Code, rr.Header())
	}
	var spec map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &spec); err != nil {
		t.Fatal(err)
	}
	if _, ok := spec["swagger"]; ok || spec["openapi"] != "3.0.3" {
		t.Fatalf("version keys = %v %v", spec["swagger"], spec["openapi"])
	}
	if title := spec["info"].(map[string]any)["title"]; title != "shipscan API (staging)" {
		t.Fatalf("title = %v", title)
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatal("error schema missing")
	}

	responses := spec["paths"].(map[string]any)["/scan/sessions"].(map[string]any)["post"].(map[string]any)["responses"].(map[string]any)
	if responses["409"].(map[string]any)["description"] != "custom" {
		t.Fatal("documented response overwritten")
	}
	for _, status := range []string{"201", "400", "500"} {
		if _, ok := responses[status]; !ok {
			t.Fatalf("missing %s", status)
		}
	}
}

func TestDocJSON_Skeleton(t *testing.T) {
	testkit.Serial(t)
	rr := fetch(t, true)
	var spec map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &spec); err != nil {
		t.Fatal(err)
	}
	if servers := spec["servers"].([]any); len(servers) != 1 {
		t.Fatalf("servers = %v", servers)
	}
}

func TestDocJSON_BadSource(t *testing.T) {
	testkit.Serial(t)
	SetDoc(func() string { return "{" })
	t.Cleanup(func() { SetDoc(func() string { return skeleton }) })
	if rr := fetch(t, true); rr.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rr.Code)
	}
}

func TestMount_Disabled(t *testing.T) {
	if rr := fetch(t, false); rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rr.Code)
	}
}
