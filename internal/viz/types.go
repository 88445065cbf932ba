// Package viz renders the relationship graph as an interactive HTML page.
package viz

import (
	"strings"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/paper"
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents a paper in the graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	// Tooltip fields
	Title   string `json:"title,omitempty"`
	Authors string `json:"authors,omitempty"` // "First Last, First Last"
	Year    string `json:"year,omitempty"`
	URL     string `json:"url,omitempty"`

	// Sizing
	CitationCount int `json:"citationCount"`
}

// Edge represents a classified paper relationship.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	Relationship string  `json:"relationship"`
	Strength     float64 `json:"strength"`
	Evidence     string  `json:"evidence,omitempty"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// labelWords caps how many title words appear in a node label.
const labelWords = 5

// FromGraph converts a relationship graph into visualization data.
func FromGraph(g *graph.Graph) *GraphData {
	data := &GraphData{
		Nodes: make([]Node, 0, len(g.Nodes)),
		Edges: make([]Edge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		count := 0
		if n.CitationCount != nil {
			count = *n.CitationCount
		}
		data.Nodes = append(data.Nodes, Node{
			ID:            n.ID,
			Label:         nodeLabel(n),
			Title:         n.Title,
			Authors:       strings.Join(n.Authors, ", "),
			Year:          n.Year,
			URL:           n.URL,
			CitationCount: count,
		})
	}

	for _, e := range g.Edges {
		data.Edges = append(data.Edges, Edge{
			Source:       e.Source,
			Target:       e.Target,
			Relationship: e.Relationship,
			Strength:     e.Strength,
			Evidence:     e.Evidence,
		})
	}

	return data
}

// nodeLabel builds a short display label: leading title words plus the
// year when known.
func nodeLabel(n graph.Node) string {
	words := strings.Fields(n.Title)
	label := n.Title
	if len(words) > labelWords {
		label = strings.Join(words[:labelWords], " ") + "…"
	}
	if n.Year != "" && n.Year != paper.UnknownYear {
		label += " (" + n.Year + ")"
	}
	return label
}
