package paper

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"punctuation stripped", "Attention Is All You Need.", "attention is all you need"},
		{"hyphens become spaces", "Sequence-to-Sequence Learning", "sequence to sequence learning"},
		{"whitespace collapsed", "  deep   learning ", "deep learning"},
		{"empty", "", ""},
		{"digits kept", "GPT-4 Technical Report", "gpt 4 technical report"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.title); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "attention is all you need", "Attention Is All You Need", 1.0},
		{"disjoint", "graph neural networks", "protein folding", 0.0},
		{"both empty", "", "", 0.0},
		{"one empty", "attention", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(tt.a, tt.b); got != tt.want {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	// Partial overlap lands strictly between 0 and 1.
	got := Jaccard("neural machine translation", "neural translation systems")
	if got <= 0 || got >= 1 {
		t.Errorf("partial overlap Jaccard = %v, want in (0,1)", got)
	}
}

func TestSurname(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first last", "Ashish Vaswani", "vaswani"},
		{"comma order", "Vaswani, Ashish", "vaswani"},
		{"suffix kept with surname", "Martin Luther King Jr.", "king"},
		{"single token", "Madonna", "madonna"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Surname(tt.in); got != tt.want {
				t.Errorf("Surname(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSharedSurnames(t *testing.T) {
	a := []string{"Ashish Vaswani", "Noam Shazeer", "Niki Parmar"}
	b := []string{"A. Vaswani", "N. Shazeer", "J. Uszkoreit"}
	if got := SharedSurnames(a, b); got != 2 {
		t.Errorf("SharedSurnames = %d, want 2", got)
	}
	if got := SharedSurnames(nil, b); got != 0 {
		t.Errorf("SharedSurnames(nil, b) = %d, want 0", got)
	}
}

func TestAuthorsSubset(t *testing.T) {
	full := []string{"Ashish Vaswani", "Noam Shazeer", "Niki Parmar"}
	sub := []string{"A. Vaswani", "N. Parmar"}
	if !AuthorsSubset(sub, full) {
		t.Error("expected sub ⊆ full")
	}
	if AuthorsSubset(full, sub) {
		t.Error("full should not be subset of sub")
	}
	if AuthorsSubset(nil, full) {
		t.Error("empty list is not treated as a subset")
	}
}

func TestIsPersonName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Ashish Vaswani", true},
		{"Madonna", false},
		{"Stanford University", false},
		{"Max Planck Institute", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPersonName(tt.in); got != tt.want {
			t.Errorf("IsPersonName(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBackfill(t *testing.T) {
	count := 42
	p := Paper{ID: "p1", Title: UnknownTitle, Year: UnknownYear, Authors: []string{"A. Vaswani"}}
	p.Backfill(Paper{
		Title:         "Attention Is All You Need",
		Authors:       []string{"Ashish Vaswani", "Noam Shazeer"},
		Year:          "2017",
		Venue:         "NeurIPS",
		ExternalID:    "s2:649def34",
		CitationCount: &count,
	})

	if p.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Year != "2017" {
		t.Errorf("Year = %q", p.Year)
	}
	if len(p.Authors) != 2 {
		t.Errorf("richer author list should win, got %v", p.Authors)
	}
	if p.CitationCount == nil || *p.CitationCount != 42 {
		t.Error("CitationCount not backfilled")
	}

	// Populated fields are never overwritten.
	p.Backfill(Paper{Title: "Other Title", Year: "1999", Authors: []string{"X"}})
	if p.Title != "Attention Is All You Need" || p.Year != "2017" || len(p.Authors) != 2 {
		t.Error("Backfill overwrote populated fields")
	}
}

func TestValidYear(t *testing.T) {
	for in, want := range map[string]bool{
		"2017": true, "1900": true, "1899": false, "20x7": false, "17": false, "Unknown": false,
	} {
		if got := ValidYear(in); got != want {
			t.Errorf("ValidYear(%q) = %v, want %v", in, got, want)
		}
	}
}
