// Package export writes the follow graph as Gephi node and edge tables and
// publishes the resulting artifacts.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/alfredjeanlab/followgraph/internal/model"
	"github.com/alfredjeanlab/followgraph/internal/safeio"
)

// Artifact file names.
const (
	NodesFile = "nodes.csv"
	EdgesFile = "edges.csv"
)

var (
	nodeHeader = []string{"Id", "Label", "FullName", "Username"}
	edgeHeader = []string{"Source", "Target", "Type"}
)

// Artifact is one exported file.
type Artifact struct {
	Name string
	Data []byte
}

// WriteNodes writes the node table: one row per node, sorted by id. Label
// and Username both carry the username.
func WriteNodes(w io.Writer, nodes map[string]model.Node) error {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cw := csv.NewWriter(w)
	if err := cw.Write(nodeHeader); err != nil {
		return fmt.Errorf("write node header: %w", err)
	}
	for _, id := range ids {
		n := nodes[id]
		if err := cw.Write([]string{id, n.Username, n.FullName, n.Username}); err != nil {
			return fmt.Errorf("write node %s: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdges writes the edge table in edge order. Every row has type
// Directed.
func WriteEdges(w io.Writer, edges []model.Edge) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(edgeHeader); err != nil {
		return fmt.Errorf("write edge header: %w", err)
	}
	for _, e := range edges {
		if err := cw.Write([]string{e.Source, e.Target, model.EdgeTypeDirected}); err != nil {
			return fmt.Errorf("write edge %s->%s: %w", e.Source, e.Target, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode renders both tables. An empty node set or edge set is an error.
func Encode(nodes map[string]model.Node, edges []model.Edge) ([]Artifact, error) {
	if len(nodes) == 0 {
		return nil, model.ErrEmptyNodeSet
	}
	if len(edges) == 0 {
		return nil, model.ErrEmptyEdgeSet
	}

	var nb, eb bytes.Buffer
	if err := WriteNodes(&nb, nodes); err != nil {
		return nil, err
	}
	if err := WriteEdges(&eb, edges); err != nil {
		return nil, err
	}
	return []Artifact{
		{Name: NodesFile, Data: nb.Bytes()},
		{Name: EdgesFile, Data: eb.Bytes()},
	}, nil
}

// Exporter writes the tables into an output directory.
type Exporter struct {
	dir    string
	logger *slog.Logger
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	return &Exporter{dir: dir, logger: logger}
}

// Export encodes g and writes nodes.csv and edges.csv. Nothing is written
// when the graph is empty; the first write failure aborts the export.
func (e *Exporter) Export(ctx context.Context, g *model.Graph) ([]Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	artifacts, err := Encode(g.Nodes, g.Edges)
	if err != nil {
		return nil, err
	}

	e.logger.Info("writing graph tables", "nodes", len(g.Nodes), "edges", len(g.Edges), "dir", e.dir)
	for _, a := range artifacts {
		path := filepath.Join(e.dir, a.Name)
		if err := safeio.WriteFileAtomic(path, a.Data, 0o644); err != nil {
			return nil, fmt.Errorf("export %s: %w", a.Name, err)
		}
		e.logger.Debug("wrote artifact", "path", path, "bytes", len(a.Data))
	}
	return artifacts, nil
}
