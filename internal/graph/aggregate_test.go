package graph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type memDocs struct {
	docs []*model.Document
	err  error
}

func (m *memDocs) SaveDocument(_ context.Context, d *model.Document) (string, error) {
	m.docs = append(m.docs, d)
	return d.Username, nil
}

func (m *memDocs) ListDocuments(context.Context) ([]*model.Document, error) {
	return m.docs, m.err
}

func TestBuild_Empty(t *testing.T) {
	_, err := newTestAggregator().Build(nil)
	if !errors.Is(err, model.ErrNoInputDocuments) {
		t.Fatalf("expected ErrNoInputDocuments, got %v", err)
	}
}

func TestBuild_Scenario(t *testing.T) {
	g, err := newTestAggregator().Build([]*model.Document{{
		Username:   "alice",
		ID:         "1",
		Followings: []model.Account{{ID: "2", Username: "bob", FullName: "Bob B"}},
	}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if g.Nodes["1"].Username != "alice" || g.Nodes["2"].FullName != "Bob B" {
		t.Fatalf("unexpected nodes: %+v", g.Nodes)
	}
	if len(g.Edges) != 1 || g.Edges[0] != (model.Edge{Source: "1", Target: "2"}) {
		t.Fatalf("unexpected edges: %+v", g.Edges)
	}
}

func TestBuild_CrossDocument(t *testing.T) {
	docs := []*model.Document{
		{Username: "alice", ID: "1", Followings: []model.Account{
			{ID: "2", Username: "bob", FullName: "Bob"},
			{ID: "3", Username: "carol", FullName: "Carol"},
		}},
		{Username: "bob", ID: "2", Followings: []model.Account{
			{ID: "1", Username: "alice", FullName: "Alice A"},
			{ID: "3", Username: "carol_new", FullName: "Carol New"},
		}},
		// Same owner again (e.g. a renamed document): repeated edges collapse.
		{Username: "alice_old", ID: "1", Followings: []model.Account{
			{ID: "2", Username: "bob", FullName: "Bob"},
			{ID: "4", Username: "dan", FullName: "Dan"},
		}},
	}
	g, err := newTestAggregator().Build(docs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(g.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d: %+v", len(g.Nodes), g.Nodes)
	}
	// alice was first seen as an owner without a full name; the later
	// following record fills it in but does not replace the username.
	if got := g.Nodes["1"]; got.Username != "alice" || got.FullName != "Alice A" {
		t.Errorf("node 1 = %+v", got)
	}
	if got := g.Nodes["3"]; got.Username != "carol" || got.FullName != "Carol" {
		t.Errorf("node 3 = %+v, want first-seen attributes", got)
	}

	want := []model.Edge{
		{Source: "1", Target: "2"},
		{Source: "1", Target: "3"},
		{Source: "2", Target: "1"},
		{Source: "2", Target: "3"},
		{Source: "1", Target: "4"},
	}
	if len(g.Edges) != len(want) {
		t.Fatalf("edges = %+v, want %+v", g.Edges, want)
	}
	for i := range want {
		if g.Edges[i] != want[i] {
			t.Errorf("edges[%d] = %+v, want %+v", i, g.Edges[i], want[i])
		}
	}

	// Every edge endpoint has a node.
	for _, e := range g.Edges {
		if _, ok := g.Nodes[e.Source]; !ok {
			t.Errorf("edge source %s has no node", e.Source)
		}
		if _, ok := g.Nodes[e.Target]; !ok {
			t.Errorf("edge target %s has no node", e.Target)
		}
	}
}

func TestBuild_Malformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  *model.Document
	}{
		{"Nil", nil},
		{"OwnerMissingID", &model.Document{Username: "alice"}},
		{"OwnerMissingUsername", &model.Document{ID: "1"}},
		{"FollowingMissingUsername", &model.Document{Username: "alice", ID: "1", Followings: []model.Account{{ID: "2"}}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			valid := &model.Document{Username: "zed", ID: "9", Followings: []model.Account{{ID: "1", Username: "alice"}}}
			_, err := newTestAggregator().Build([]*model.Document{valid, tc.doc})
			if !errors.Is(err, model.ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	src := &memDocs{}
	if _, err := newTestAggregator().Load(context.Background(), src); !errors.Is(err, model.ErrNoInputDocuments) {
		t.Fatalf("expected ErrNoInputDocuments, got %v", err)
	}

	src.err = model.ErrMalformedDocument
	if _, err := newTestAggregator().Load(context.Background(), src); !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}

	src.err = nil
	src.docs = []*model.Document{{Username: "a", ID: "1", Followings: []model.Account{{ID: "2", Username: "b"}}}}
	g, err := newTestAggregator().Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s := g.Stats(); s.Nodes != 2 || s.Edges != 1 {
		t.Fatalf("Stats = %+v", s)
	}
}
