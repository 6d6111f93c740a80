package httpapi

import (
	"encoding/json"
	"strings"
	"testing"

	"farmacia/docs"
)

// every /api/v1 route must be described in the served OpenAPI document
func TestSwaggerDocCoversRoutes(t *testing.T) {
	s := setupServer(t)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("swagger doc is not valid json: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Fatalf("basePath %q", doc.BasePath)
	}

	for _, r := range s.Engine().Routes() {
		if !strings.HasPrefix(r.Path, doc.BasePath) {
			continue
		}
		path := strings.TrimPrefix(r.Path, doc.BasePath)
		segs := strings.Split(path, "/")
		for i, seg := range segs {
			if strings.HasPrefix(seg, ":") {
				segs[i] = "{" + seg[1:] + "}"
			}
		}
		path = strings.Join(segs, "/")
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("route %s %s missing from swagger doc", r.Method, path)
		}
		if _, ok := ops[strings.ToLower(r.Method)]; !ok {
			t.Fatalf("method %s for %s missing from swagger doc", r.Method, path)
		}
	}
}
