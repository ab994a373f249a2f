package capture

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// buildHAR returns an encoded HAR capture with one page per title and one
// entry per response body. An empty body produces an entry without content
// text.
func buildHAR(t *testing.T, titles []string, bodies []string) []byte {
	t.Helper()
	pages := make([]map[string]any, 0, len(titles))
	for i, title := range titles {
		pages = append(pages, map[string]any{
			"startedDateTime": "2024-05-01T10:00:00.000Z",
			"id":              "page_" + string(rune('1'+i)),
			"title":           title,
			"pageTimings":     map[string]any{"onContentLoad": 120.5, "onLoad": 300.25},
		})
	}
	entries := make([]map[string]any, 0, len(bodies))
	for _, body := range bodies {
		content := map[string]any{"size": len(body), "mimeType": "application/json"}
		if body != "" {
			content["text"] = body
		}
		entries = append(entries, map[string]any{
			"pageref":         "page_1",
			"startedDateTime": "2024-05-01T10:00:01.000Z",
			"time":            42.1,
			"request": map[string]any{
				"method":      "GET",
				"url":         "https://www.instagram.com/api/v1/friendships/1/following/",
				"httpVersion": "http/2.0",
				"headers":     []any{},
				"queryString": []any{},
				"cookies":     []any{},
				"headersSize": -1,
				"bodySize":    0,
			},
			"response": map[string]any{
				"status":      200,
				"statusText":  "",
				"httpVersion": "http/2.0",
				"headers":     []any{},
				"cookies":     []any{},
				"content":     content,
				"redirectURL": "",
				"headersSize": -1,
				"bodySize":    -1,
			},
			"cache":   map[string]any{},
			"timings": map[string]any{"send": 0.1, "wait": 40.0, "receive": 2.0},
		})
	}
	doc := map[string]any{
		"log": map[string]any{
			"version": "1.2",
			"creator": map[string]any{"name": "WebInspector", "version": "537.36"},
			"pages":   pages,
			"entries": entries,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal HAR: %v", err)
	}
	return data
}

func writeHAR(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// owners is an in-memory OwnerResolver.
type owners map[string]model.Account

func (o owners) Lookup(username string) (model.Account, bool) {
	for _, a := range o {
		if strings.EqualFold(a.Username, username) {
			return a, true
		}
	}
	return model.Account{}, false
}
