package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/followgraph/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func saveGraph(ctx context.Context, db executor, g *model.Graph) error {
	for _, id := range g.NodeIDs() {
		if err := upsertAccount(ctx, db, id, g.Nodes[id]); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		if err := insertFollow(ctx, db, e); err != nil {
			return err
		}
	}
	return nil
}

func upsertAccount(ctx context.Context, db executor, id string, n model.Node) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, full_name, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = COALESCE(EXCLUDED.full_name, accounts.full_name),
			updated_at = NOW()`,
		id, n.Username, nullString(n.FullName),
	)
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", id, err)
	}
	return nil
}

func insertFollow(ctx context.Context, db executor, e model.Edge) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO follows (source_id, target_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		e.Source, e.Target,
	)
	if err != nil {
		return fmt.Errorf("insert follow %s->%s: %w", e.Source, e.Target, err)
	}
	return nil
}

func queryStats(ctx context.Context, db executor) (model.GraphStats, error) {
	var st model.GraphStats
	err := db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM accounts), (SELECT COUNT(*) FROM follows)`,
	).Scan(&st.Nodes, &st.Edges)
	if err != nil {
		return model.GraphStats{}, fmt.Errorf("count graph: %w", err)
	}
	return st, nil
}

// nullString converts an empty string to a NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
