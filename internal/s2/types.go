// Package s2 provides a rate-limited client for the Semantic Scholar
// Academic Graph API.
package s2

// Paper represents a paper from the Semantic Scholar API.
type Paper struct {
	PaperID        string      `json:"paperId"`
	ExternalIDs    ExternalIDs `json:"externalIds,omitempty"`
	Title          string      `json:"title"`
	Abstract       string      `json:"abstract,omitempty"`
	Authors        []Author    `json:"authors,omitempty"`
	Year           int         `json:"year,omitempty"`
	Venue          string      `json:"venue,omitempty"`
	URL            string      `json:"url,omitempty"`
	CitationCount  int         `json:"citationCount,omitempty"`
	ReferenceCount int         `json:"referenceCount,omitempty"`
}

// ExternalIDs contains external identifiers for a paper.
type ExternalIDs struct {
	DOI           string `json:"DOI,omitempty"`
	ArXiv         string `json:"ArXiv,omitempty"`
	PubMed        string `json:"PubMed,omitempty"`
	PubMedCentral string `json:"PubMedCentral,omitempty"`
	CorpusID      int    `json:"CorpusId,omitempty"`
}

// Author represents an author from the Semantic Scholar API.
type Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// citationResult wraps one entry of the citations/references endpoints.
type citationResult struct {
	CitingPaper *Paper `json:"citingPaper,omitempty"`
	CitedPaper  *Paper `json:"citedPaper,omitempty"`
}

// pagedResponse is the envelope of the paginated endpoints.
type pagedResponse struct {
	Offset int              `json:"offset"`
	Next   int              `json:"next,omitempty"`
	Data   []citationResult `json:"data"`
}

// searchResponse is the envelope of the paper search endpoint.
type searchResponse struct {
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
	Data   []Paper `json:"data"`
}

// batchRequest is the request body for the batch paper lookup.
type batchRequest struct {
	IDs []string `json:"ids"`
}
