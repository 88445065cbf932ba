// Package paper defines the core domain types for the citation pipeline.
package paper

// Sentinel values for metadata that could not be extracted. Missing optional
// fields never abort a pipeline run; they surface as these placeholders.
const (
	UnknownTitle = "Unknown Title"
	UnknownYear  = "Unknown"
)

// Paper represents one paper flowing through a pipeline run, either supplied
// as input or discovered through the external citation database.
type Paper struct {
	// Identity: stable string derived from the source URL or, once resolved,
	// the external identifier (e.g. "doi:10.1038/nature12373").
	ID string `json:"id"`

	// Metadata
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Year     string   `json:"year"` // 4-digit string or "Unknown"
	Abstract string   `json:"abstract,omitempty"`
	Venue    string   `json:"venue,omitempty"`
	URL      string   `json:"url,omitempty"`

	// External enrichment (populated from the citation database)
	ExternalID    string `json:"external_id,omitempty"`
	CitationCount *int   `json:"citation_count,omitempty"`

	// In-text citation evidence extracted from the full text.
	Citations []Occurrence `json:"citations,omitempty"`
}

// BibEntry is one bibliography entry of a source document. Built once per
// parse and read-only afterward.
type BibEntry struct {
	ID      string   `json:"id"` // document-local id, e.g. "b12"
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors"`
	Year    string   `json:"year,omitempty"`
}

// Occurrence is one in-text mention of a bibliography entry together with its
// surrounding text. Several occurrences may reference the same entry.
type Occurrence struct {
	BibID   string   `json:"bib_id"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Year    string   `json:"year,omitempty"`

	Marker        string `json:"marker,omitempty"` // raw in-text marker, e.g. "[12]"
	Context       string `json:"context"`          // full sentence-aligned window
	ContextBefore string `json:"context_before,omitempty"`
	ContextAfter  string `json:"context_after,omitempty"`
	Section       string `json:"section,omitempty"`
}

// HasTitle reports whether the occurrence carries a usable title.
func (o Occurrence) HasTitle() bool {
	return NormalizeTitle(o.Title) != ""
}

// Backfill copies fields from other into p where p's field is missing.
// Populated fields are never overwritten; the richer author list wins because
// the citation database may return fewer names than the document carried.
func (p *Paper) Backfill(other Paper) {
	if (p.Title == "" || p.Title == UnknownTitle) && other.Title != "" {
		p.Title = other.Title
	}
	if len(other.Authors) > len(p.Authors) {
		p.Authors = other.Authors
	}
	if (p.Year == "" || p.Year == UnknownYear) && other.Year != "" {
		p.Year = other.Year
	}
	if p.Abstract == "" {
		p.Abstract = other.Abstract
	}
	if p.Venue == "" {
		p.Venue = other.Venue
	}
	if p.URL == "" {
		p.URL = other.URL
	}
	if p.ExternalID == "" {
		p.ExternalID = other.ExternalID
	}
	if p.CitationCount == nil {
		p.CitationCount = other.CitationCount
	}
}
