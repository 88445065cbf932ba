// Package export converts stored papers to BibTeX.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/citegraph/internal/paper"
)

// ToBibTeX converts a paper to a BibTeX entry.
func ToBibTeX(p paper.Paper) string {
	entryType := determineEntryType(p)
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType, CitationKey(p)))

	if len(p.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(p.Authors)))
	}

	b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(p.Title)))

	if p.Venue != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", fieldName, escapeLatex(p.Venue)))
	}

	if p.Year != "" && p.Year != paper.UnknownYear {
		b.WriteString(fmt.Sprintf("  year = {%s},\n", p.Year))
	}

	if doi := DOI(p); doi != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", doi))
	}

	if p.URL != "" {
		b.WriteString(fmt.Sprintf("  url = {%s},\n", p.URL))
	}

	if p.Abstract != "" {
		b.WriteString(fmt.Sprintf("  abstract = {%s},\n", escapeLatex(p.Abstract)))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple papers to BibTeX format.
func ToBibTeXList(papers []paper.Paper) string {
	var entries []string
	for _, p := range papers {
		entries = append(entries, ToBibTeX(p))
	}
	return strings.Join(entries, "\n")
}

// CitationKey derives a stable citation key: first-author surname, year,
// and the first significant title word, e.g. "vaswani2017attention".
func CitationKey(p paper.Paper) string {
	var parts []string

	if len(p.Authors) > 0 {
		if surname := keyToken(paper.Surname(p.Authors[0])); surname != "" {
			parts = append(parts, surname)
		}
	}
	if p.Year != "" && p.Year != paper.UnknownYear {
		parts = append(parts, p.Year)
	}
	if words := paper.SignificantWords(p.Title, 1); len(words) > 0 {
		parts = append(parts, keyToken(words[0]))
	}

	if len(parts) == 0 {
		return keyToken(p.ID)
	}
	return strings.Join(parts, "")
}

// DOI returns the paper's DOI, if its identity carries one.
func DOI(p paper.Paper) string {
	if strings.HasPrefix(p.ID, "doi:") {
		return strings.TrimPrefix(p.ID, "doi:")
	}
	return ""
}

// keyToken lowercases and strips a string down to citation-key-safe runes.
func keyToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// determineEntryType returns the BibTeX entry type for a paper.
func determineEntryType(p paper.Paper) string {
	venue := strings.ToLower(p.Venue)

	// Preprints
	if strings.Contains(venue, "arxiv") ||
		strings.Contains(venue, "biorxiv") ||
		strings.Contains(venue, "medrxiv") {
		return "article"
	}

	// Conference proceedings
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// formatAuthors formats authors BibTeX style: "Last, First and Last, First".
// Authors arrive as display names ("First Last"), so the surname is split
// off the end.
func formatAuthors(authors []string) string {
	var formatted []string
	for _, a := range authors {
		parts := strings.Fields(a)
		switch {
		case len(parts) > 1:
			last := parts[len(parts)-1]
			first := strings.Join(parts[:len(parts)-1], " ")
			formatted = append(formatted, fmt.Sprintf("%s, %s", last, first))
		case len(parts) == 1:
			formatted = append(formatted, parts[0])
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
