package graph

import (
	"math"

	"github.com/matsen/citegraph/internal/paper"
)

// derivativeStrengthCeiling is the citation count at which a derivative-work
// edge saturates at strength 1.0.
const derivativeStrengthCeiling = 100000

// DerivativeStrength maps a citation count to an edge strength on a log
// scale: 0.3 + 0.7·log(1+count)/log(1+100000), capped at 1.0.
func DerivativeStrength(citationCount int) float64 {
	if citationCount < 0 {
		citationCount = 0
	}
	s := 0.3 + 0.7*math.Log(1+float64(citationCount))/math.Log(1+derivativeStrengthCeiling)
	return math.Min(s, 1.0)
}

// Merge unions other into g. Nodes deduplicate by id first, then by
// normalized-title equality against existing nodes (external sources may hand
// back the same paper under a different id). Edges deduplicate by ordered
// (source, target) pair; g's edge wins a collision, so classified edges are
// never displaced by externally sourced ones. Edge endpoints are remapped
// when their node collapsed onto an existing one.
func Merge(g, other *Graph) *Graph {
	merged := &Graph{}
	merged.Nodes = append(merged.Nodes, g.Nodes...)

	byTitle := map[string]string{} // normalized title → node id
	for _, n := range merged.Nodes {
		if t := paper.NormalizeTitle(n.Title); t != "" {
			if _, ok := byTitle[t]; !ok {
				byTitle[t] = n.ID
			}
		}
	}

	// Remap collapses other-node ids onto existing node ids.
	remap := map[string]string{}
	for _, n := range other.Nodes {
		if merged.HasNode(n.ID) {
			continue
		}
		if t := paper.NormalizeTitle(n.Title); t != "" {
			if existing, ok := byTitle[t]; ok {
				remap[n.ID] = existing
				continue
			}
			byTitle[t] = n.ID
		}
		merged.Nodes = append(merged.Nodes, n)
	}

	for _, e := range g.Edges {
		merged.SetEdge(e)
	}
	for _, e := range other.Edges {
		if to, ok := remap[e.Source]; ok {
			e.Source = to
		}
		if to, ok := remap[e.Target]; ok {
			e.Target = to
		}
		if merged.HasEdge(e.Source, e.Target) {
			continue
		}
		merged.SetEdge(e)
	}
	return merged
}
