package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alfredjeanlab/followgraph/internal/accounts"
	"github.com/alfredjeanlab/followgraph/internal/capture"
	"github.com/alfredjeanlab/followgraph/internal/export"
	"github.com/alfredjeanlab/followgraph/internal/model"
	"github.com/alfredjeanlab/followgraph/internal/store/files"
)

const knownAccounts = `{"users":[
	{"id":"1","username":"alice"},
	{"id":"3","username":"carol","full_name":"Carol C"}
]}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// harCapture encodes a minimal HAR capture with one page titled title and
// one entry per response body.
func harCapture(t *testing.T, title string, bodies ...string) []byte {
	t.Helper()
	entries := make([]map[string]any, 0, len(bodies))
	for _, body := range bodies {
		entries = append(entries, map[string]any{
			"startedDateTime": "2024-05-01T10:00:01.000Z",
			"time":            12.5,
			"request": map[string]any{
				"method": "GET", "url": "https://www.instagram.com/api/v1/friendships/following/",
				"httpVersion": "http/2.0", "headers": []any{}, "queryString": []any{},
				"cookies": []any{}, "headersSize": -1, "bodySize": 0,
			},
			"response": map[string]any{
				"status": 200, "statusText": "", "httpVersion": "http/2.0",
				"headers": []any{}, "cookies": []any{},
				"content":     map[string]any{"size": len(body), "mimeType": "application/json", "text": body},
				"redirectURL": "", "headersSize": -1, "bodySize": -1,
			},
			"cache":   map[string]any{},
			"timings": map[string]any{"send": 0.1, "wait": 10.0, "receive": 2.4},
		})
	}
	data, err := json.Marshal(map[string]any{
		"log": map[string]any{
			"version": "1.2",
			"creator": map[string]any{"name": "WebInspector", "version": "537.36"},
			"pages": []any{map[string]any{
				"startedDateTime": "2024-05-01T10:00:00.000Z",
				"id":              "page_1",
				"title":           title,
				"pageTimings":     map[string]any{"onLoad": 300.0},
			}},
			"entries": entries,
		},
	})
	if err != nil {
		t.Fatalf("marshal HAR: %v", err)
	}
	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// testOptions places every directory under one temp root. The input
// directory is created; the others are left for bootstrap.
func testOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	opts := Options{
		InputDir:     filepath.Join(root, "network_logs"),
		DocumentsDir: filepath.Join(root, "json_followings"),
		OutputDir:    filepath.Join(root, "output"),
	}
	if err := os.MkdirAll(opts.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return opts
}

// newTestPipeline builds a pipeline with the real extractor and file store.
func newTestPipeline(t *testing.T, opts Options, setters ...Option) *Pipeline {
	t.Helper()
	dir, err := accounts.Parse([]byte(knownAccounts))
	if err != nil {
		t.Fatalf("parse accounts: %v", err)
	}
	logger := discardLogger()
	return New(opts, capture.NewExtractor(dir, logger), files.New(opts.DocumentsDir), logger, setters...)
}

// recordingEvents collects published topics.
type recordingEvents struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, topic string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return r.err
}

func (r *recordingEvents) Close() error { return nil }

func (r *recordingEvents) count(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.topics {
		if t == topic {
			n++
		}
	}
	return n
}

// fakeDestination records artifacts or fails.
type fakeDestination struct {
	err       error
	artifacts []export.Artifact
}

func (d *fakeDestination) Name() string { return "fake" }

func (d *fakeDestination) Write(_ context.Context, artifacts []export.Artifact) error {
	d.artifacts = artifacts
	return d.err
}

// fakeGraphStore records saved graphs.
type fakeGraphStore struct {
	saved  []model.GraphStats
	err    error
	closed bool
}

func (s *fakeGraphStore) SaveGraph(_ context.Context, g *model.Graph) error {
	s.saved = append(s.saved, g.Stats())
	return s.err
}

func (s *fakeGraphStore) Close() error {
	s.closed = true
	return nil
}

// stubExtractor returns canned results keyed by capture file name.
type stubExtractor map[string]*capture.Result

func (s stubExtractor) ExtractFile(_ context.Context, path string) (*capture.Result, error) {
	res, ok := s[filepath.Base(path)]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return res, nil
}
