package paper

import "strings"

// Empirically tuned matching thresholds, kept as-is rather than
// re-derived. Approximate by nature; tests treat them as such.
const (
	// TitleContainmentRatio is the minimum length ratio between two
	// normalized titles for a containment match to count. Without it,
	// a short generic title would "match" inside almost anything.
	TitleContainmentRatio = 0.6

	// KeywordOverlapFloor is the minimum word-level Jaccard similarity
	// for two titles to count as the same paper absent containment.
	KeywordOverlapFloor = 0.5
)

// FuzzyTitleMatch reports whether two titles plausibly denote the same
// paper: either one normalized title contains the other (with their
// lengths within TitleContainmentRatio), or their word overlap exceeds
// KeywordOverlapFloor.
func FuzzyTitleMatch(a, b string) bool {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) && float64(len(shorter))/float64(len(longer)) >= TitleContainmentRatio {
		return true
	}
	return Jaccard(na, nb) > KeywordOverlapFloor
}

// CitesTitle reports whether any citation occurrence of p fuzzy-matches
// the given title. This is the evidence gate for relationship
// classification: no occurrence, no oracle call.
func CitesTitle(p *Paper, title string) bool {
	for i := range p.Citations {
		if FuzzyTitleMatch(p.Citations[i].Title, title) {
			return true
		}
	}
	return false
}
