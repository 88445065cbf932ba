package s2

import (
	"strconv"
	"strings"

	"github.com/matsen/citegraph/internal/paper"
)

// StableID derives the pipeline-stable id for an S2 paper: the normalized
// DOI when present, otherwise the S2 paper id.
func StableID(p Paper) string {
	if doi := NormalizeDOI(p.ExternalIDs.DOI); doi != "" {
		return "doi:" + doi
	}
	return "s2:" + p.PaperID
}

// MapPaper converts an S2 API paper into the pipeline's domain type.
func MapPaper(p Paper) paper.Paper {
	out := paper.Paper{
		ID:         StableID(p),
		Title:      p.Title,
		Abstract:   p.Abstract,
		Venue:      p.Venue,
		URL:        p.URL,
		ExternalID: p.PaperID,
		Year:       paper.UnknownYear,
	}
	if out.Title == "" {
		out.Title = paper.UnknownTitle
	}
	if p.Year > 0 {
		out.Year = strconv.Itoa(p.Year)
	}
	for _, a := range p.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			out.Authors = append(out.Authors, name)
		}
	}
	count := p.CitationCount
	out.CitationCount = &count
	return out
}

// NormalizeDOI normalizes a DOI for comparison: common URL prefixes and the
// "DOI:" scheme are removed and the remainder lowercased.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}
