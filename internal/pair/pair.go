// Package pair pre-scores candidate paper pairs so that obviously
// unrelated pairs never reach the classification oracle.
package pair

import (
	"math"
	"sort"
	"strconv"

	"github.com/matsen/citegraph/internal/paper"
)

// Scoring weights. Direct citation evidence dominates: a pair with a
// matching in-text citation is always worth classifying.
const (
	weightDirectCitation  = 0.4
	weightKeywordJaccard  = 0.2
	weightAuthorOverlap   = 0.1
	weightYearProximity   = 0.1
	weightTitleSimilarity = 0.1
	weightAbstractOverlap = 0.1

	// DefaultConfidenceFloor is the minimum confidence for a pair to be
	// kept. Empirically tuned.
	DefaultConfidenceFloor = 0.25

	// yearDecaySpan is the gap in years over which proximity decays
	// from 1.0 down to its floor of 0.1.
	yearDecaySpan = 10
)

// Pair is a directed candidate for relationship classification.
type Pair struct {
	Source     *paper.Paper
	Target     *paper.Paper
	Confidence float64
}

// Filter scores every pair of papers and returns the directed pairs at
// or above floor (pass floor <= 0 for the default), ordered by
// descending confidence. When citation evidence fixes a direction only
// that direction is emitted; otherwise both orderings are kept and the
// classification stage decides.
func Filter(papers []*paper.Paper, floor float64) []Pair {
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}

	var out []Pair
	for i := 0; i < len(papers); i++ {
		for j := i + 1; j < len(papers); j++ {
			a, b := papers[i], papers[j]
			aCitesB := paper.CitesTitle(a, b.Title)
			bCitesA := paper.CitesTitle(b, a.Title)

			conf := Confidence(a, b, aCitesB || bCitesA)
			if conf < floor {
				continue
			}
			switch {
			case aCitesB && !bCitesA:
				out = append(out, Pair{Source: a, Target: b, Confidence: conf})
			case bCitesA && !aCitesB:
				out = append(out, Pair{Source: b, Target: a, Confidence: conf})
			default:
				out = append(out, Pair{Source: a, Target: b, Confidence: conf})
				out = append(out, Pair{Source: b, Target: a, Confidence: conf})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// Confidence computes the weighted heuristic score for one pair.
func Confidence(a, b *paper.Paper, directCitation bool) float64 {
	var score float64
	if directCitation {
		score += weightDirectCitation
	}
	score += weightKeywordJaccard * paper.Jaccard(a.Title+" "+a.Abstract, b.Title+" "+b.Abstract)
	score += weightAuthorOverlap * authorOverlap(a.Authors, b.Authors)
	score += weightYearProximity * yearProximity(a.Year, b.Year)
	score += weightTitleSimilarity * titleSimilarity(a.Title, b.Title)
	score += weightAbstractOverlap * paper.Jaccard(a.Abstract, b.Abstract)
	return score
}

// authorOverlap is the shared-surname count over the smaller list size.
func authorOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(paper.SharedSurnames(a, b)) / float64(smaller)
}

// yearProximity decays linearly from 1.0 at equal years to a floor of
// 0.1 at yearDecaySpan years apart and beyond. Missing years score 0.
func yearProximity(a, b string) float64 {
	ya, errA := strconv.Atoi(a)
	yb, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return 0
	}
	gap := math.Abs(float64(ya - yb))
	if gap >= yearDecaySpan {
		return 0.1
	}
	return 1.0 - gap*(0.9/yearDecaySpan)
}

// titleSimilarity is 1 - normalized Levenshtein distance between the
// normalized titles.
func titleSimilarity(a, b string) float64 {
	na, nb := paper.NormalizeTitle(a), paper.NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	longer := len(na)
	if len(nb) > longer {
		longer = len(nb)
	}
	return 1.0 - float64(levenshtein(na, nb))/float64(longer)
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
