// Package dedupe merges citation occurrences that refer to the same paper.
//
// A paper cited five times in the introduction yields five occurrences, and
// sloppy bibliographies repeat entries under slightly different spellings;
// both collapse to the single most informative occurrence.
package dedupe

import "github.com/matsen/citegraph/internal/paper"

// minSharedSurnames is the author-overlap threshold under which two
// non-identical author lists are still considered the same group.
const minSharedSurnames = 2

// Occurrences deduplicates a list of citation occurrences, keeping input
// order for the survivors. Two occurrences are duplicates iff their
// normalized titles are equal (occurrences without a title are never merged),
// their years agree or either is missing, and their author lists are similar.
func Occurrences(occs []paper.Occurrence) []paper.Occurrence {
	var out []paper.Occurrence
	for _, occ := range occs {
		merged := false
		for i := range out {
			if sameCitation(out[i], occ) {
				out[i] = better(out[i], occ)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, occ)
		}
	}
	return out
}

func sameCitation(a, b paper.Occurrence) bool {
	ta, tb := paper.NormalizeTitle(a.Title), paper.NormalizeTitle(b.Title)
	if ta == "" || tb == "" || ta != tb {
		return false
	}
	if !yearsCompatible(a.Year, b.Year) {
		return false
	}
	return authorsSimilar(a.Authors, b.Authors)
}

func yearsCompatible(a, b string) bool {
	if a == "" || b == "" || a == paper.UnknownYear || b == paper.UnknownYear {
		return true
	}
	return a == b
}

// authorsSimilar reports whether two author lists plausibly name the same
// group: both empty, exact ordered match, at least two shared surnames, or
// one list a subset of the other.
func authorsSimilar(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if exactMatch(a, b) {
		return true
	}
	if paper.SharedSurnames(a, b) >= minSharedSurnames {
		return true
	}
	return paper.AuthorsSubset(a, b) || paper.AuthorsSubset(b, a)
}

func exactMatch(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// better picks the more informative of two duplicate occurrences:
// more authors, then a present year over a missing one, then longer context.
func better(a, b paper.Occurrence) paper.Occurrence {
	if len(b.Authors) != len(a.Authors) {
		if len(b.Authors) > len(a.Authors) {
			return b
		}
		return a
	}
	aYear, bYear := hasYear(a.Year), hasYear(b.Year)
	if aYear != bYear {
		if bYear {
			return b
		}
		return a
	}
	if len(b.Context) > len(a.Context) {
		return b
	}
	return a
}

func hasYear(y string) bool {
	return y != "" && y != paper.UnknownYear
}
