// Package neo4j implements store.GraphStore backed by Neo4j. Accounts become
// (:Account {id}) nodes and follows become [:FOLLOWS] relationships.
package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/alfredjeanlab/followgraph/internal/model"
	"github.com/alfredjeanlab/followgraph/internal/store"
)

// BatchSize is the number of rows sent per UNWIND statement.
const BatchSize = 500

const (
	constraintQuery = `CREATE CONSTRAINT account_id IF NOT EXISTS
FOR (a:Account) REQUIRE a.id IS UNIQUE`

	mergeAccountsQuery = `UNWIND $rows AS row
MERGE (a:Account {id: row.id})
SET a.username = row.username,
    a.full_name = CASE WHEN row.full_name = '' THEN a.full_name ELSE row.full_name END`

	mergeFollowsQuery = `UNWIND $rows AS row
MATCH (s:Account {id: row.source})
MATCH (t:Account {id: row.target})
MERGE (s)-[:FOLLOWS]->(t)`
)

// querier runs one Cypher statement. It is satisfied by driverQuerier and by
// test fakes.
type querier interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) error
	Close(ctx context.Context) error
}

type driverQuerier struct {
	driver   neo4jdriver.DriverWithContext
	database string
}

func (d *driverQuerier) ExecuteQuery(ctx context.Context, query string, params map[string]any) error {
	_, err := neo4jdriver.ExecuteQuery(ctx, d.driver, query, params,
		neo4jdriver.EagerResultTransformer,
		neo4jdriver.ExecuteQueryWithDatabase(d.database))
	return err
}

func (d *driverQuerier) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

// Neo4jStore writes graphs to Neo4j.
type Neo4jStore struct {
	q      querier
	logger *slog.Logger
}

// Compile-time check that Neo4jStore implements store.GraphStore.
var _ store.GraphStore = (*Neo4jStore)(nil)

// New connects to uri, verifies connectivity, and ensures the account id
// uniqueness constraint exists.
func New(ctx context.Context, uri, user, password string, logger *slog.Logger) (*Neo4jStore, error) {
	driver, err := neo4jdriver.NewDriverWithContext(uri, neo4jdriver.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j at %s: %w", uri, err)
	}

	s := newWithQuerier(&driverQuerier{driver: driver}, logger)
	if err := s.ensureConstraint(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return s, nil
}

func newWithQuerier(q querier, logger *slog.Logger) *Neo4jStore {
	return &Neo4jStore{q: q, logger: logger}
}

func (s *Neo4jStore) ensureConstraint(ctx context.Context) error {
	if err := s.q.ExecuteQuery(ctx, constraintQuery, nil); err != nil {
		return fmt.Errorf("create account constraint: %w", err)
	}
	return nil
}

// SaveGraph merges all accounts first, then all follows, in batches.
func (s *Neo4jStore) SaveGraph(ctx context.Context, g *model.Graph) error {
	ids := g.NodeIDs()
	accounts := make([]any, 0, len(ids))
	for _, id := range ids {
		n := g.Nodes[id]
		accounts = append(accounts, map[string]any{
			"id":        id,
			"username":  n.Username,
			"full_name": n.FullName,
		})
	}
	follows := make([]any, 0, len(g.Edges))
	for _, e := range g.Edges {
		follows = append(follows, map[string]any{"source": e.Source, "target": e.Target})
	}

	if err := s.runBatches(ctx, mergeAccountsQuery, accounts); err != nil {
		return fmt.Errorf("merge accounts: %w", err)
	}
	if err := s.runBatches(ctx, mergeFollowsQuery, follows); err != nil {
		return fmt.Errorf("merge follows: %w", err)
	}
	s.logger.Info("graph saved to neo4j", "nodes", len(accounts), "edges", len(follows))
	return nil
}

func (s *Neo4jStore) runBatches(ctx context.Context, query string, rows []any) error {
	for start := 0; start < len(rows); start += BatchSize {
		end := min(start+BatchSize, len(rows))
		if err := s.q.ExecuteQuery(ctx, query, map[string]any{"rows": rows[start:end]}); err != nil {
			return fmt.Errorf("rows %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// Close closes the driver.
func (s *Neo4jStore) Close() error {
	return s.q.Close(context.Background())
}
