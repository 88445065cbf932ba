package oracle

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "bare object",
			input: `{"relationship":"builds_on"}`,
			want:  `{"relationship":"builds_on"}`,
			ok:    true,
		},
		{
			name:  "wrapped in prose",
			input: "Sure! Here is the result:\n```json\n{\"a\": 1}\n```\nHope that helps.",
			want:  `{"a": 1}`,
			ok:    true,
		},
		{
			name:  "nested braces",
			input: `prefix {"outer": {"inner": 2}} suffix`,
			want:  `{"outer": {"inner": 2}}`,
			ok:    true,
		},
		{
			name:  "brace inside string literal",
			input: `{"evidence": "set {x} here"}`,
			want:  `{"evidence": "set {x} here"}`,
			ok:    true,
		},
		{
			name:  "escaped quote inside string",
			input: `{"evidence": "she said \"}\" loudly"}`,
			want:  `{"evidence": "she said \"}\" loudly"}`,
			ok:    true,
		},
		{
			name:  "no object",
			input: "no json here",
			ok:    false,
		},
		{
			name:  "unbalanced",
			input: `{"a": 1`,
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ExtractJSON(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseClassification(t *testing.T) {
	reply := `The papers are clearly related.
{"relationship": "Builds_On", "strength": 0.8, "evidence": "attention mechanisms improve translation.", "description": "A builds on B"}`
	c, err := ParseClassification(reply)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("want a classification")
	}
	if c.Relationship != "builds_on" {
		t.Errorf("Relationship = %q", c.Relationship)
	}
	if c.Strength != 0.8 {
		t.Errorf("Strength = %v", c.Strength)
	}
	if c.Evidence != "attention mechanisms improve translation." {
		t.Errorf("Evidence = %q", c.Evidence)
	}
}

func TestParseClassification_NullIsNoEdge(t *testing.T) {
	for _, reply := range []string{
		`{"relationship": null}`,
		`{"relationship": ""}`,
		`{"relationship": "null"}`,
		"These papers are unrelated.",
	} {
		c, err := ParseClassification(reply)
		if err != nil {
			t.Errorf("ParseClassification(%q) err = %v", reply, err)
		}
		if c != nil {
			t.Errorf("ParseClassification(%q) = %+v, want nil", reply, c)
		}
	}
}

func TestParseClassification_MalformedJSON(t *testing.T) {
	if _, err := ParseClassification(`{"relationship": builds_on}`); err == nil {
		t.Error("want parse error for invalid JSON")
	}
}

func TestParseClassification_ClampsStrength(t *testing.T) {
	c, err := ParseClassification(`{"relationship": "extends", "strength": 1.7}`)
	if err != nil {
		t.Fatal(err)
	}
	if c.Strength != 1.0 {
		t.Errorf("Strength = %v, want clamped to 1.0", c.Strength)
	}
}

func TestRepairEvidence(t *testing.T) {
	fullContext := "Prior work is limited. We build directly on the attention mechanism of Vaswani et al. Our results improve on it."
	tests := []struct {
		name     string
		evidence string
		context  string
		want     string
	}{
		{
			name:     "already complete",
			evidence: "We build directly on the attention mechanism of Vaswani et al.",
			context:  fullContext,
			want:     "We build directly on the attention mechanism of Vaswani et al.",
		},
		{
			name:     "extended forward to sentence end",
			evidence: "We build directly on the attention",
			context:  fullContext,
			want:     "We build directly on the attention mechanism of Vaswani et al.",
		},
		{
			name:     "extended backward when no terminator follows",
			evidence: "improve on it",
			context:  "Prior work is limited. Our results improve on it substantially",
			want:     "Our results improve on it",
		},
		{
			name:     "not in context returned unchanged",
			evidence: "completely different text",
			context:  fullContext,
			want:     "completely different text",
		},
		{
			name:     "empty",
			evidence: "  ",
			context:  fullContext,
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairEvidence(tt.evidence, tt.context); got != tt.want {
				t.Errorf("RepairEvidence(%q) = %q, want %q", tt.evidence, got, tt.want)
			}
		})
	}
}
