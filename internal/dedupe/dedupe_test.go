package dedupe

import (
	"reflect"
	"testing"

	"github.com/matsen/citegraph/internal/paper"
)

func occ(title string, authors []string, year, context string) paper.Occurrence {
	return paper.Occurrence{Title: title, Authors: authors, Year: year, Context: context}
}

func TestOccurrences_MergesRepeatMentions(t *testing.T) {
	occs := []paper.Occurrence{
		occ("Attention Is All You Need", []string{"Ashish Vaswani"}, "2017", "short mention"),
		occ("attention is all you need.", []string{"Ashish Vaswani", "Noam Shazeer"}, "2017", "a much longer context window here"),
		occ("BERT: Pre-training of Deep Bidirectional Transformers", []string{"Jacob Devlin"}, "2019", "ctx"),
	}
	got := Occurrences(occs)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// The variant with more authors wins the merge.
	if len(got[0].Authors) != 2 {
		t.Errorf("kept occurrence has %d authors, want 2", len(got[0].Authors))
	}
	// Non-duplicates keep input order.
	if got[1].Title != "BERT: Pre-training of Deep Bidirectional Transformers" {
		t.Errorf("order not stable: %q", got[1].Title)
	}
}

func TestOccurrences_YearRules(t *testing.T) {
	// Missing year merges with a present year; conflicting years do not.
	merged := Occurrences([]paper.Occurrence{
		occ("Deep Residual Learning", []string{"Kaiming He", "Xiangyu Zhang"}, "", "a"),
		occ("Deep Residual Learning", []string{"Kaiming He", "Xiangyu Zhang"}, "2016", "b"),
	})
	if len(merged) != 1 {
		t.Fatalf("missing year should merge, got %d entries", len(merged))
	}
	if merged[0].Year != "2016" {
		t.Errorf("present year should survive the merge, got %q", merged[0].Year)
	}

	kept := Occurrences([]paper.Occurrence{
		occ("Deep Residual Learning", []string{"Kaiming He", "Xiangyu Zhang"}, "2015", "a"),
		occ("Deep Residual Learning", []string{"Kaiming He", "Xiangyu Zhang"}, "2016", "b"),
	})
	if len(kept) != 2 {
		t.Errorf("conflicting years must not merge, got %d entries", len(kept))
	}
}

func TestOccurrences_AuthorSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []string
		wantLen int
	}{
		{"both empty", nil, nil, 1},
		{"exact match", []string{"A Vaswani"}, []string{"A Vaswani"}, 1},
		{"two shared surnames", []string{"Ashish Vaswani", "Noam Shazeer", "Niki Parmar"}, []string{"A. Vaswani", "N. Shazeer"}, 1},
		{"subset", []string{"A. Vaswani"}, []string{"Ashish Vaswani", "Noam Shazeer"}, 1},
		{"disjoint groups", []string{"Jacob Devlin", "Ming-Wei Chang"}, []string{"Tom Brown", "Benjamin Mann"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Occurrences([]paper.Occurrence{
				occ("Same Title Here", tt.a, "2020", "x"),
				occ("Same Title Here", tt.b, "2020", "y"),
			})
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestOccurrences_EmptyTitlesNeverMerge(t *testing.T) {
	got := Occurrences([]paper.Occurrence{
		occ("", nil, "2020", "a"),
		occ("", nil, "2020", "b"),
	})
	if len(got) != 2 {
		t.Errorf("titleless occurrences must be skipped by dedup, got len %d", len(got))
	}
}

func TestOccurrences_Idempotent(t *testing.T) {
	occs := []paper.Occurrence{
		occ("Attention Is All You Need", []string{"Ashish Vaswani"}, "2017", "c1"),
		occ("Attention Is All You Need", []string{"Ashish Vaswani", "Noam Shazeer"}, "", "c2"),
		occ("BERT", []string{"Jacob Devlin", "Ming-Wei Chang"}, "2019", "c3"),
		occ("", nil, "", "c4"),
	}
	once := Occurrences(occs)
	twice := Occurrences(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup is not a fixed point:\nonce:  %v\ntwice: %v", once, twice)
	}
}
