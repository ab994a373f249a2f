package store

import (
	"context"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// DocumentStore persists per-account follow documents.
type DocumentStore interface {
	// SaveDocument writes doc, replacing any document for the same username.
	// It returns the location written.
	SaveDocument(ctx context.Context, doc *model.Document) (string, error)

	// ListDocuments returns every stored document in a deterministic order.
	// A document that cannot be decoded or validated fails the whole call
	// with model.ErrMalformedDocument.
	ListDocuments(ctx context.Context) ([]*model.Document, error)
}

// GraphStore receives the aggregated graph after export.
type GraphStore interface {
	SaveGraph(ctx context.Context, g *model.Graph) error
	Close() error
}
