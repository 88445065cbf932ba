// Package graph defines the relationship graph assembled by a pipeline run.
package graph

import (
	"errors"

	"github.com/matsen/citegraph/internal/paper"
)

// Relationship labels a directed edge between two papers.
const (
	BuildsOn  = "builds_on"
	Extends   = "extends"
	Applies   = "applies"
	Compares  = "compares"
	Surveys   = "surveys"
	Critiques = "critiques"
)

// ValidRelationships enumerates the accepted relationship labels.
var ValidRelationships = map[string]bool{
	BuildsOn:  true,
	Extends:   true,
	Applies:   true,
	Compares:  true,
	Surveys:   true,
	Critiques: true,
}

// Validation errors.
var (
	ErrEmptySource        = errors.New("source is required")
	ErrEmptyTarget        = errors.New("target is required")
	ErrSelfEdge           = errors.New("source and target cannot be the same")
	ErrUnknownRelation    = errors.New("unknown relationship type")
	ErrStrengthOutOfRange = errors.New("strength must be in [0,1]")
)

// Edge is a directed relationship between two papers, backed by a verbatim
// evidence quote from the citing paper's text.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship"`
	Strength     float64 `json:"strength"`
	Evidence     string  `json:"evidence,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// EdgeKey is the identity tuple of an edge. At most one edge is retained per
// ordered (source, target) pair.
type EdgeKey struct {
	Source string
	Target string
}

// Key returns the identity tuple for this edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target}
}

// Validate checks edge invariants.
func (e Edge) Validate() error {
	if e.Source == "" {
		return ErrEmptySource
	}
	if e.Target == "" {
		return ErrEmptyTarget
	}
	if e.Source == e.Target {
		return ErrSelfEdge
	}
	if !ValidRelationships[e.Relationship] {
		return ErrUnknownRelation
	}
	if e.Strength < 0 || e.Strength > 1 {
		return ErrStrengthOutOfRange
	}
	return nil
}

// Node is the graph projection of a paper's metadata.
type Node struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	Year          string   `json:"year"`
	Venue         string   `json:"venue,omitempty"`
	URL           string   `json:"url,omitempty"`
	CitationCount *int     `json:"citation_count,omitempty"`
}

// NodeFromPaper projects a paper onto its graph node.
func NodeFromPaper(p paper.Paper) Node {
	return Node{
		ID:            p.ID,
		Title:         p.Title,
		Authors:       p.Authors,
		Year:          p.Year,
		Venue:         p.Venue,
		URL:           p.URL,
		CitationCount: p.CitationCount,
	}
}

// Graph is the assembled paper-relationship graph. Every edge endpoint
// resolves to a node id present in Nodes; node ids are unique.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// HasEdge reports whether an edge for the ordered (source, target) pair
// exists.
func (g *Graph) HasEdge(source, target string) bool {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// AddNode appends a node unless its id is already present.
func (g *Graph) AddNode(n Node) {
	if n.ID == "" || g.HasNode(n.ID) {
		return
	}
	g.Nodes = append(g.Nodes, n)
}

// SetEdge inserts or replaces the edge for its (source, target) pair.
// Later classifications replace rather than accumulate. Edges referencing
// missing nodes or failing validation are dropped.
func (g *Graph) SetEdge(e Edge) bool {
	if err := e.Validate(); err != nil {
		return false
	}
	if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
		return false
	}
	for i, existing := range g.Edges {
		if existing.Key() == e.Key() {
			g.Edges[i] = e
			return true
		}
	}
	g.Edges = append(g.Edges, e)
	return true
}
