package model

import "sort"

// EdgeTypeDirected is the only edge type the follow graph has.
const EdgeTypeDirected = "Directed"

// Node holds the display attributes of an account in the graph.
type Node struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
}

// Edge is a directed follow relationship: Source follows Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the aggregated follow network.
type Graph struct {
	Nodes map[string]Node `json:"nodes"`
	Edges []Edge          `json:"edges"`

	edgeIndex map[Edge]struct{}
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[string]Node),
		edgeIndex: make(map[Edge]struct{}),
	}
}

// AddNode registers an account. The first value seen for an attribute is
// kept; an empty attribute is filled by a later non-empty value. It reports
// whether the node was new.
func (g *Graph) AddNode(a Account) bool {
	n, ok := g.Nodes[a.ID]
	if !ok {
		g.Nodes[a.ID] = Node{FullName: a.FullName, Username: a.Username}
		return true
	}
	if n.FullName == "" {
		n.FullName = a.FullName
	}
	if n.Username == "" {
		n.Username = a.Username
	}
	g.Nodes[a.ID] = n
	return false
}

// AddEdge appends source→target unless the same ordered pair is already
// present. Both endpoints must have been registered with AddNode. It reports
// whether the edge was new.
func (g *Graph) AddEdge(source, target string) bool {
	if g.edgeIndex == nil {
		g.edgeIndex = make(map[Edge]struct{}, len(g.Edges))
		for _, e := range g.Edges {
			g.edgeIndex[e] = struct{}{}
		}
	}
	e := Edge{Source: source, Target: target}
	if _, dup := g.edgeIndex[e]; dup {
		return false
	}
	g.edgeIndex[e] = struct{}{}
	g.Edges = append(g.Edges, e)
	return true
}

// NodeIDs returns the node ids in ascending order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GraphStats summarizes a graph for logs and events.
type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// Stats returns node and edge counts.
func (g *Graph) Stats() GraphStats {
	return GraphStats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
}
