package paper

import (
	"strings"
	"unicode"
)

// Stopwords excluded when selecting significant title words.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "for": true, "and": true,
	"or": true, "in": true, "on": true, "to": true, "with": true, "via": true,
	"by": true, "from": true, "at": true, "is": true, "are": true, "its": true,
	"as": true, "using": true, "towards": true, "toward": true,
}

// Name suffixes kept with the surname when splitting author names.
var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

// Substrings that mark a "name" as an organization rather than a person.
var organizationMarkers = []string{
	"university", "institute", "laboratory", "department", "college",
	"school", "centre", "center", "foundation", "corporation", "inc",
	"ltd", "gmbh", "group", "team",
}

// NormalizeTitle lowercases a title and strips everything but letters,
// digits and single spaces, so that formatting drift between sources
// ("Attention Is All You Need." vs "attention is all you need") compares equal.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// TitleWords returns the set of normalized words of a title.
func TitleWords(title string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(NormalizeTitle(title)) {
		words[w] = true
	}
	return words
}

// SignificantWords returns the normalized non-stopword tokens of a title,
// in order, capped at max (0 means no cap).
func SignificantWords(title string, max int) []string {
	var out []string
	for _, w := range strings.Fields(NormalizeTitle(title)) {
		if stopwords[w] || len(w) < 2 {
			continue
		}
		out = append(out, w)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// Jaccard computes word-level Jaccard similarity between two strings after
// title normalization. Two empty strings score 0, not 1: absence of text is
// no evidence of sameness.
func Jaccard(a, b string) float64 {
	wa, wb := TitleWords(a), TitleWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

// Surname extracts the normalized family name from a full author name.
// Handles "Last, First" order and common suffixes (Jr, III).
//
// Known limitations: multi-part surnames (van der Waals) reduce to their
// final token, matching how the external database abbreviates them.
func Surname(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if idx := strings.Index(name, ","); idx > 0 {
		name = strings.TrimSpace(name[:idx])
	}
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	if nameSuffixes[strings.ToLower(last)] && len(parts) > 1 {
		last = parts[len(parts)-2]
	}
	return strings.ToLower(strings.Trim(last, "."))
}

// SharedSurnames counts distinct surnames appearing in both author lists.
func SharedSurnames(a, b []string) int {
	seen := map[string]bool{}
	for _, name := range a {
		if s := Surname(name); s != "" {
			seen[s] = true
		}
	}
	shared := 0
	counted := map[string]bool{}
	for _, name := range b {
		s := Surname(name)
		if s != "" && seen[s] && !counted[s] {
			shared++
			counted[s] = true
		}
	}
	return shared
}

// AuthorsSubset reports whether every surname of a appears in b.
func AuthorsSubset(a, b []string) bool {
	if len(a) == 0 {
		return false
	}
	surnames := map[string]bool{}
	for _, name := range b {
		if s := Surname(name); s != "" {
			surnames[s] = true
		}
	}
	for _, name := range a {
		s := Surname(name)
		if s == "" || !surnames[s] {
			return false
		}
	}
	return true
}

// IsPersonName reports whether an extracted name plausibly denotes a person:
// at least two tokens and no organization markers. Single-word "names" and
// affiliation strings leak out of structure extraction and must be discarded.
func IsPersonName(name string) bool {
	name = strings.TrimSpace(name)
	if len(strings.Fields(name)) < 2 {
		return false
	}
	lower := strings.ToLower(name)
	for _, marker := range organizationMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// ValidYear reports whether s is a plausible 4-digit publication year.
func ValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s >= "1900"
}
