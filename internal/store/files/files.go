// Package files stores follow documents as one JSON file per account.
package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alfredjeanlab/followgraph/internal/model"
	"github.com/alfredjeanlab/followgraph/internal/safeio"
	"github.com/alfredjeanlab/followgraph/internal/store"
)

// Store keeps documents as <username>.json in a directory.
type Store struct {
	dir string
}

// Compile-time check that Store implements store.DocumentStore.
var _ store.DocumentStore = (*Store)(nil)

// New returns a store rooted at dir. The directory is not created.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// SaveDocument writes doc to <dir>/<username>.json, overwriting any
// previous file for that username.
func (s *Store) SaveDocument(ctx context.Context, doc *model.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := doc.FileName()
	if err != nil {
		return "", err
	}
	data, err := model.MarshalDocument(doc)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	if err := safeio.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ListDocuments reads every *.json file in filename order.
func (s *Store) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	names, err := safeio.ListFiles(s.dir, model.DocumentExt)
	if err != nil {
		return nil, err
	}
	docs := make([]*model.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}
		doc, err := model.UnmarshalDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
