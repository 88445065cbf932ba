// Package section classifies section headers by their citation relevance.
//
// Argumentative citation evidence concentrates in introduction- and
// related-work-like sections; headers are matched against a canonical
// taxonomy first, then by keyword containment with conflict avoidance so
// that "Conclusion and Future Work" never passes as an introduction.
package section

import (
	"regexp"
	"strings"
)

// Canonical (or near-canonical) headers, matched case-insensitively after
// numbering is stripped.
var introCanonical = map[string]bool{
	"introduction":              true,
	"background":                true,
	"motivation":                true,
	"overview":                  true,
	"preliminaries":             true,
	"background and motivation": true,
	"motivation and background": true,
}

var relatedCanonical = map[string]bool{
	"related work":                true,
	"related works":               true,
	"prior work":                  true,
	"previous work":               true,
	"literature review":           true,
	"related literature":          true,
	"state of the art":            true,
	"background and related work": true,
	"related work and background": true,
}

// Keyword fallback for noisy headers ("2. Introduction to Our Approach").
var introKeywords = []string{"introduction", "background", "motivation"}

var relatedKeywords = []string{"related", "prior work", "previous work", "literature", "survey"}

// A keyword match is rejected when a conflicting header keyword appears in
// the same header; a header that is half conclusion is not citation context.
var conflictKeywords = []string{
	"conclusion", "concluding", "future", "method", "methodology",
	"experiment", "result", "discussion", "evaluation", "implementation",
	"appendix", "acknowledg", "reference",
}

// Leading numbering like "3.", "IV.", "2.1" before the header text.
var headerNumbering = regexp.MustCompile(`^\s*([0-9]+(\.[0-9]+)*\.?|[ivxlc]+\.)\s*`)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = headerNumbering.ReplaceAllString(h, "")
	h = strings.Trim(h, " .:")
	return h
}

func hasConflict(h string) bool {
	for _, kw := range conflictKeywords {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

func matches(header string, canonical map[string]bool, keywords []string) bool {
	h := normalizeHeader(header)
	if h == "" {
		return false
	}
	if canonical[h] {
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(h, kw) {
			return !hasConflict(h)
		}
	}
	return false
}

// IsIntroductionLike reports whether a header denotes an introduction-like
// section.
func IsIntroductionLike(header string) bool {
	return matches(header, introCanonical, introKeywords)
}

// IsRelatedWorkLike reports whether a header denotes a related-work-like
// section.
func IsRelatedWorkLike(header string) bool {
	return matches(header, relatedCanonical, relatedKeywords)
}

// Relevant returns the subset of headers carrying argumentative citation
// evidence, preserving input order. An empty result means the caller must
// fall back to scanning the whole document rather than returning nothing.
func Relevant(headers []string) []string {
	var out []string
	for _, h := range headers {
		if IsIntroductionLike(h) || IsRelatedWorkLike(h) {
			out = append(out, h)
		}
	}
	return out
}
