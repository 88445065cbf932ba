// Package tei parses the TEI XML trees produced by the PDF-structuring
// service into document metadata, a bibliography map, and per-section
// text with in-text citation markers.
package tei

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/citegraph/internal/paper"
)

// Document is the structured view of one parsed source paper.
type Document struct {
	Title    string
	Authors  []string
	Abstract string
	Venue    string
	Year     string

	// Bibliography maps document-local ids ("b0", "b12") to entries.
	Bibliography map[string]paper.BibEntry

	// Sections in document order, each with its flattened text and the
	// citation markers found inside it.
	Sections []Section
}

// Section is one body division of the document.
type Section struct {
	Title string
	Text  string
	Refs  []Ref
}

// Ref is one in-text citation marker within a section.
type Ref struct {
	BibID  string // bibliography id with the leading '#' stripped
	Marker string // raw marker text, e.g. "[12]"
}

// SectionTitles returns the section headers in document order.
func (d *Document) SectionTitles() []string {
	titles := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		if s.Title != "" {
			titles = append(titles, s.Title)
		}
	}
	return titles
}

// Inline citation markers stripped from abstract text: numeric brackets
// ([12], [1, 3]), author-year parentheticals ((Smith et al., 2020)) and
// bare year parentheticals ((2020)).
var markerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[\d+(?:\s*[,\x{2013}-]\s*\d+)*\]`),
	regexp.MustCompile(`\((?:[A-Z][^()]*?,\s*)?\d{4}[a-z]?\)`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// StripMarkers removes inline citation markers and normalizes whitespace.
func StripMarkers(s string) string {
	for _, p := range markerPatterns {
		s = p.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// XML shapes for the subset of TEI the pipeline reads.

type teiRoot struct {
	XMLName xml.Name  `xml:"TEI"`
	Header  teiHeader `xml:"teiHeader"`
	Text    struct {
		Body struct {
			Divs []teiDiv `xml:"div"`
		} `xml:"body"`
		Back struct {
			Divs []struct {
				ListBibl struct {
					Entries []biblStruct `xml:"biblStruct"`
				} `xml:"listBibl"`
			} `xml:"div"`
		} `xml:"back"`
	} `xml:"text"`
}

type teiHeader struct {
	FileDesc struct {
		TitleStmt struct {
			Titles []teiTitle `xml:"title"`
		} `xml:"titleStmt"`
		SourceDesc struct {
			BiblStruct biblStruct `xml:"biblStruct"`
		} `xml:"sourceDesc"`
	} `xml:"fileDesc"`
	ProfileDesc struct {
		Abstract struct {
			Inner string `xml:",innerxml"`
		} `xml:"abstract"`
	} `xml:"profileDesc"`
}

type teiDiv struct {
	Inner string `xml:",innerxml"`
}

type biblStruct struct {
	ID       string `xml:"http://www.w3.org/XML/1998/namespace id,attr"`
	Analytic struct {
		Titles  []teiTitle  `xml:"title"`
		Authors []teiAuthor `xml:"author"`
	} `xml:"analytic"`
	Monogr struct {
		Titles  []teiTitle  `xml:"title"`
		Authors []teiAuthor `xml:"author"`
		Imprint struct {
			Dates []teiDate `xml:"date"`
		} `xml:"imprint"`
	} `xml:"monogr"`
}

type teiTitle struct {
	Level string `xml:"level,attr"`
	Type  string `xml:"type,attr"`
	Text  string `xml:",chardata"`
}

type teiAuthor struct {
	PersName struct {
		Forenames []string `xml:"forename"`
		Surname   string   `xml:"surname"`
	} `xml:"persName"`
}

type teiDate struct {
	Type string `xml:"type,attr"`
	When string `xml:"when,attr"`
	Text string `xml:",chardata"`
}

// Parse reads a TEI document. Missing fields degrade to sentinel values;
// only input that fails XML parsing altogether is an error.
func Parse(data []byte) (*Document, error) {
	var root teiRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing TEI: %w", err)
	}

	doc := &Document{
		Title:        paper.UnknownTitle,
		Year:         paper.UnknownYear,
		Bibliography: map[string]paper.BibEntry{},
	}

	if t := pickTitle(root.Header.FileDesc.TitleStmt.Titles); t != "" {
		doc.Title = t
	}

	header := root.Header.FileDesc.SourceDesc.BiblStruct
	doc.Authors = personNames(header.Analytic.Authors)
	if len(doc.Authors) == 0 {
		doc.Authors = personNames(header.Monogr.Authors)
	}
	if y := pickYear(header.Monogr.Imprint.Dates); y != "" {
		doc.Year = y
	}
	doc.Venue = pickVenue(header.Monogr.Titles)

	if inner := root.Header.ProfileDesc.Abstract.Inner; inner != "" {
		_, text, _ := walkFragment(inner)
		doc.Abstract = StripMarkers(text)
	}

	for _, div := range root.Text.Body.Divs {
		sec, ok := parseSection(div.Inner)
		if ok {
			doc.Sections = append(doc.Sections, sec)
		}
	}

	for _, backDiv := range root.Text.Back.Divs {
		for _, entry := range backDiv.ListBibl.Entries {
			if entry.ID == "" {
				continue
			}
			doc.Bibliography[entry.ID] = bibEntry(entry)
		}
	}

	return doc, nil
}

func bibEntry(b biblStruct) paper.BibEntry {
	title := pickTitle(b.Analytic.Titles)
	if title == "" {
		title = pickTitle(b.Monogr.Titles)
	}
	authors := personNames(b.Analytic.Authors)
	if len(authors) == 0 {
		authors = personNames(b.Monogr.Authors)
	}
	return paper.BibEntry{
		ID:      b.ID,
		Title:   title,
		Authors: authors,
		Year:    pickYear(b.Monogr.Imprint.Dates),
	}
}

// pickTitle prefers the main analytic title, falling back to the first
// non-empty one.
func pickTitle(titles []teiTitle) string {
	for _, t := range titles {
		if t.Type == "main" && strings.TrimSpace(t.Text) != "" {
			return strings.TrimSpace(t.Text)
		}
	}
	for _, t := range titles {
		if s := strings.TrimSpace(t.Text); s != "" {
			return s
		}
	}
	return ""
}

// pickVenue reads the journal or monograph title of the header.
func pickVenue(titles []teiTitle) string {
	for _, t := range titles {
		if t.Level == "j" || t.Level == "m" {
			if s := strings.TrimSpace(t.Text); s != "" {
				return s
			}
		}
	}
	return ""
}

// pickYear extracts a valid 4-digit year from the published date,
// preferring the machine-readable when attribute.
func pickYear(dates []teiDate) string {
	candidate := func(s string) string {
		s = strings.TrimSpace(s)
		if len(s) >= 4 && paper.ValidYear(s[:4]) {
			return s[:4]
		}
		return ""
	}
	for _, d := range dates {
		if d.Type != "" && d.Type != "published" {
			continue
		}
		if y := candidate(d.When); y != "" {
			return y
		}
		if y := candidate(d.Text); y != "" {
			return y
		}
	}
	return ""
}

// personNames joins forenames and surname, discarding strings that fail
// the person-name validity check (single tokens, affiliations).
func personNames(authors []teiAuthor) []string {
	var out []string
	for _, a := range authors {
		parts := append([]string{}, a.PersName.Forenames...)
		if a.PersName.Surname != "" {
			parts = append(parts, a.PersName.Surname)
		}
		name := strings.TrimSpace(strings.Join(parts, " "))
		if paper.IsPersonName(name) {
			out = append(out, name)
		}
	}
	return out
}
