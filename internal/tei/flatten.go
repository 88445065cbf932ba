package tei

import (
	"encoding/xml"
	"strings"
)

// walkFragment flattens one div's inner XML into plain text, splitting
// off the leading <head> as the section title and recording every
// bibliographic <ref> marker. Malformed trailing markup truncates the
// walk rather than failing it.
func walkFragment(inner string) (title, text string, refs []Ref) {
	dec := xml.NewDecoder(strings.NewReader(inner))

	var titleBuf, textBuf strings.Builder
	inHead := 0
	headDone := false
	var current *Ref

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "head":
				if !headDone {
					inHead++
				}
			case "ref":
				if attr(t, "type") == "bibr" {
					current = &Ref{BibID: strings.TrimPrefix(attr(t, "target"), "#")}
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "head":
				if inHead > 0 {
					inHead--
					if inHead == 0 {
						headDone = true
					}
				}
			case "ref":
				if current != nil {
					current.Marker = squash(current.Marker)
					if current.Marker != "" {
						refs = append(refs, *current)
					}
					current = nil
				}
			}
		case xml.CharData:
			s := string(t)
			if inHead > 0 {
				titleBuf.WriteString(s)
				continue
			}
			textBuf.WriteString(s)
			if current != nil {
				current.Marker += s
			}
		}
	}

	return squash(titleBuf.String()), squash(textBuf.String()), refs
}

// parseSection turns one body div into a Section. Divs with neither a
// header nor text (figures, formulas) are dropped.
func parseSection(inner string) (Section, bool) {
	title, text, refs := walkFragment(inner)
	if title == "" && text == "" {
		return Section{}, false
	}
	return Section{Title: title, Text: text, Refs: refs}, true
}

// squash collapses whitespace runs to single spaces. Marker and section
// text go through the same collapse so markers stay locatable verbatim.
func squash(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
