package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Classification is the parsed relationship judgment for one paper pair.
type Classification struct {
	Relationship string  `json:"relationship"`
	Strength     float64 `json:"strength"`
	Evidence     string  `json:"evidence"`
	Description  string  `json:"description"`
}

// ExtractJSON returns the first balanced-brace substring of s. Oracle
// replies routinely wrap the JSON object in prose or markdown fences, so
// the payload is located structurally rather than trusted as-is.
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseClassification extracts and validates a Classification from the
// oracle's free-text reply. A reply carrying no JSON object, or one
// whose relationship is null/empty, yields (nil, nil): no relationship
// found is an answer, not an error.
func ParseClassification(reply string) (*Classification, error) {
	payload, ok := ExtractJSON(reply)
	if !ok {
		return nil, nil
	}

	var raw struct {
		Relationship *string  `json:"relationship"`
		Strength     *float64 `json:"strength"`
		Evidence     string   `json:"evidence"`
		Description  string   `json:"description"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("parsing classification: %w", err)
	}
	if raw.Relationship == nil || *raw.Relationship == "" || *raw.Relationship == "null" {
		return nil, nil
	}

	c := &Classification{
		Relationship: strings.ToLower(strings.TrimSpace(*raw.Relationship)),
		Evidence:     strings.TrimSpace(raw.Evidence),
		Description:  strings.TrimSpace(raw.Description),
	}
	if raw.Strength != nil {
		c.Strength = *raw.Strength
	}
	switch {
	case c.Strength < 0:
		c.Strength = 0
	case c.Strength > 1:
		c.Strength = 1
	}
	return c, nil
}

// RepairEvidence snaps an evidence quote to sentence boundaries within
// its source context. A quote cut off mid-sentence is extended forward
// to the next sentence terminator; if the quote cannot be located or
// extended, it is extended backward to the start of its sentence. The
// quote is returned unchanged when it already ends a sentence or does
// not occur in the context.
func RepairEvidence(evidence, context string) string {
	evidence = strings.TrimSpace(evidence)
	if evidence == "" || endsSentence(evidence) {
		return evidence
	}
	idx := strings.Index(context, evidence)
	if idx < 0 {
		return evidence
	}

	end := idx + len(evidence)
	for i := end; i < len(context); i++ {
		if isTerminator(context[i]) {
			return strings.TrimSpace(context[idx : i+1])
		}
	}

	start := idx
	for i := idx - 1; i >= 0; i-- {
		if isTerminator(context[i]) {
			break
		}
		start = i
	}
	return strings.TrimSpace(context[start:end])
}

func endsSentence(s string) bool {
	return len(s) > 0 && isTerminator(s[len(s)-1])
}

func isTerminator(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}
