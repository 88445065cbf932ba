package store

import (
	"path/filepath"
	"testing"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/paper"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "papers.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetPaper(t *testing.T) {
	s := openTestStore(t)

	count := 42
	p := paper.Paper{
		ID:            "doi:10.1/x",
		Title:         "A Paper",
		Authors:       []string{"Jane Smith", "Bob Jones"},
		Year:          "2020",
		Abstract:      "An abstract.",
		Venue:         "NeurIPS",
		URL:           "https://example.org/x",
		ExternalID:    "s2-abc",
		CitationCount: &count,
	}
	if err := s.SavePaper(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPaper("doi:10.1/x")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("paper not found")
	}
	if got.Title != p.Title || got.Year != p.Year || got.Venue != p.Venue {
		t.Errorf("got %+v", got)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "Jane Smith" {
		t.Errorf("Authors = %v", got.Authors)
	}
	if got.CitationCount == nil || *got.CitationCount != 42 {
		t.Errorf("CitationCount = %v", got.CitationCount)
	}
}

func TestGetPaper_Missing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetPaper("nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestSavePaper_Replaces(t *testing.T) {
	s := openTestStore(t)

	p := paper.Paper{ID: "p1", Title: "Old Title", Year: "2019"}
	if err := s.SavePaper(p); err != nil {
		t.Fatal(err)
	}
	p.Title = "New Title"
	if err := s.SavePaper(p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPaper("p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New Title" {
		t.Errorf("Title = %q", got.Title)
	}
	papers, err := s.ListPapers()
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 {
		t.Errorf("ListPapers = %d rows, want 1", len(papers))
	}
}

func TestSaveGraphRoundTrip(t *testing.T) {
	s := openTestStore(t)

	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Title: "Paper A", Year: "2020"},
			{ID: "b", Title: "Paper B", Year: "2017"},
		},
		Edges: []graph.Edge{
			{Source: "a", Target: "b", Relationship: graph.BuildsOn, Strength: 0.8,
				Evidence: "quote.", Description: "A builds on B"},
		},
	}
	if err := s.SaveGraph(g); err != nil {
		t.Fatal(err)
	}

	edges, err := s.LoadEdges()
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	if edges[0] != g.Edges[0] {
		t.Errorf("edge = %+v", edges[0])
	}

	papers, err := s.ListPapers()
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 2 {
		t.Errorf("papers = %d, want 2", len(papers))
	}

	// Saving again replaces, never accumulates.
	if err := s.SaveGraph(g); err != nil {
		t.Fatal(err)
	}
	edges, _ = s.LoadEdges()
	if len(edges) != 1 {
		t.Errorf("edges after resave = %d, want 1", len(edges))
	}
}

func TestPapersJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")
	papers := []paper.Paper{
		{ID: "a", Title: "Paper A", Year: "2020",
			Citations: []paper.Occurrence{{BibID: "b1", Title: "Cited", Context: "ctx."}}},
		{ID: "b", Title: "Paper B", Year: "Unknown"},
	}
	if err := WritePapersJSONL(path, papers); err != nil {
		t.Fatal(err)
	}

	got, err := ReadPapersJSONL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || len(got[0].Citations) != 1 || got[0].Citations[0].BibID != "b1" {
		t.Errorf("got[0] = %+v", got[0])
	}
}

func TestReadPapersJSONL_Missing(t *testing.T) {
	got, err := ReadPapersJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("got = %v, want nil for missing file", got)
	}
}

func TestGraphJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "a", Title: "Paper A", Year: "2020"}},
		Edges: nil,
	}
	if err := WriteGraphJSON(path, g); err != nil {
		t.Fatal(err)
	}
	got, err := ReadGraphJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != 1 || got.Nodes[0].ID != "a" {
		t.Errorf("got = %+v", got)
	}
}
