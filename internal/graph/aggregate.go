// Package graph folds per-account follow documents into one follow graph.
package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/followgraph/internal/model"
	"github.com/alfredjeanlab/followgraph/internal/store"
)

// Aggregator builds a model.Graph from documents.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator that logs through logger.
func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Load reads every document from src and aggregates them.
func (a *Aggregator) Load(ctx context.Context, src store.DocumentStore) (*model.Graph, error) {
	docs, err := src.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return a.Build(docs)
}

// Build aggregates docs in order. For each document the owner is registered,
// then every following is registered and an owner→following edge appended.
// Node attributes keep the first non-empty value seen; repeated edges are
// dropped.
func (a *Aggregator) Build(docs []*model.Document) (*model.Graph, error) {
	if len(docs) == 0 {
		return nil, model.ErrNoInputDocuments
	}

	g := model.NewGraph()
	for i, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("document %d: %w: nil document", i, model.ErrMalformedDocument)
		}
		if err := model.ValidateDocument(doc); err != nil {
			return nil, fmt.Errorf("document %d (%s): %w: %w", i, doc.Username, model.ErrMalformedDocument, err)
		}

		owner := doc.Owner()
		if g.AddNode(owner) {
			a.logger.Debug("added node", "id", owner.ID, "username", owner.Username)
		}
		added := 0
		for _, f := range doc.Followings {
			if g.AddNode(f) {
				a.logger.Debug("added node", "id", f.ID, "username", f.Username)
			}
			if g.AddEdge(owner.ID, f.ID) {
				added++
			}
		}
		a.logger.Debug("aggregated document", "username", doc.Username, "followings", len(doc.Followings), "new_edges", added)
	}

	stats := g.Stats()
	a.logger.Info("graph built", "documents", len(docs), "nodes", stats.Nodes, "edges", stats.Edges)
	return g, nil
}
