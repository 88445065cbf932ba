// Package window builds sentence-aligned context windows around in-text
// citation markers.
package window

import "strings"

// DefaultRadius is the nominal window radius in characters on each side of
// the marker, before sentence alignment.
const DefaultRadius = 300

// Window is the extracted evidence text around one citation marker.
type Window struct {
	Before  string // starts at a sentence start, or empty
	After   string // ends at a sentence end (or document end), or empty
	Context string // Before + marker + After
	Found   bool   // false when the marker could not be located verbatim
}

// isTerminator reports whether text[i] ends a sentence: terminal punctuation
// followed by whitespace or the end of the text.
func isTerminator(text string, i int) bool {
	c := text[i]
	if c != '.' && c != '!' && c != '?' {
		return false
	}
	if i+1 >= len(text) {
		return true
	}
	next := text[i+1]
	return next == ' ' || next == '\n' || next == '\t'
}

// sentenceStart returns the start offset of the sentence containing pos.
func sentenceStart(text string, pos int) int {
	for i := pos - 1; i >= 0; i-- {
		if isTerminator(text, i) && i+1 < len(text) {
			// Skip the terminator and any following whitespace.
			j := i + 1
			for j < len(text) && (text[j] == ' ' || text[j] == '\n' || text[j] == '\t') {
				j++
			}
			return j
		}
	}
	return 0
}

// sentenceEnd returns the offset one past the terminal punctuation of the
// sentence containing pos; the document end counts as a sentence end.
func sentenceEnd(text string, pos int) int {
	for i := pos; i < len(text); i++ {
		if isTerminator(text, i) {
			return i + 1
		}
	}
	return len(text)
}

// Build extracts a sentence-aligned window of the given radius around the
// first verbatim occurrence of marker in text. If the marker cannot be
// located (encoding drift between extraction passes), the window collapses
// to the marker itself with empty surroundings.
func Build(text, marker string, radius int) Window {
	if radius <= 0 {
		radius = DefaultRadius
	}
	idx := strings.Index(text, marker)
	if marker == "" || idx < 0 {
		return Window{Context: marker}
	}
	markerEnd := idx + len(marker)

	start := idx - radius
	if start < 0 {
		start = 0
	}
	start = sentenceStart(text, start)
	if start > idx {
		start = idx
	}

	end := markerEnd + radius
	if end > len(text) {
		end = len(text)
	}
	end = sentenceEnd(text, end)
	if end < markerEnd {
		end = markerEnd
	}

	before := text[start:idx]
	after := strings.TrimRight(text[markerEnd:end], " \n\t")
	return Window{
		Before:  before,
		After:   after,
		Context: before + marker + after,
		Found:   true,
	}
}
