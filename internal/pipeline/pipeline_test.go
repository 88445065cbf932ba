package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matsen/citegraph/internal/classify"
	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/oracle"
	"github.com/matsen/citegraph/internal/resolve"
	"github.com/matsen/citegraph/internal/s2"
)

const teiA = `<TEI xmlns="http://www.tei-c.org/ns/1.0">
 <teiHeader><fileDesc>
  <titleStmt><title level="a" type="main">Neural Machine Translation with Attention</title></titleStmt>
  <sourceDesc><biblStruct>
   <analytic><author><persName><forename>Dzmitry</forename><surname>Bahdanau</surname></persName></author></analytic>
   <monogr><imprint><date type="published" when="2016">2016</date></imprint></monogr>
  </biblStruct></sourceDesc>
 </fileDesc></teiHeader>
 <text>
  <body>
   <div><head>Introduction</head><p>Machine translation has advanced. As shown by
   <ref type="bibr" target="#b0">[1]</ref>, attention mechanisms improve translation.</p></div>
  </body>
  <back><div><listBibl>
   <biblStruct xml:id="b0">
    <analytic><title level="a" type="main">Attention Is All You Need</title>
     <author><persName><forename>Ashish</forename><surname>Vaswani</surname></persName></author></analytic>
    <monogr><imprint><date type="published" when="2017">2017</date></imprint></monogr>
   </biblStruct>
  </listBibl></div></back>
 </text>
</TEI>`

const teiB = `<TEI xmlns="http://www.tei-c.org/ns/1.0">
 <teiHeader><fileDesc>
  <titleStmt><title level="a" type="main">Attention Is All You Need</title></titleStmt>
  <sourceDesc><biblStruct>
   <analytic><author><persName><forename>Ashish</forename><surname>Vaswani</surname></persName></author></analytic>
   <monogr><imprint><date type="published" when="2017">2017</date></imprint></monogr>
  </biblStruct></sourceDesc>
 </fileDesc></teiHeader>
 <text><body>
  <div><head>Introduction</head><p>We propose the Transformer.</p></div>
 </body></text>
</TEI>`

type stubFetcher struct {
	failures map[string]bool
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.failures[url] {
		return nil, fmt.Errorf("connection refused")
	}
	return []byte(url), nil
}

type stubStructurer struct{}

func (s *stubStructurer) ProcessFulltext(_ context.Context, pdf []byte) ([]byte, error) {
	if strings.Contains(string(pdf), "paper-a") {
		return []byte(teiA), nil
	}
	return []byte(teiB), nil
}

type stubSearcher struct {
	papers []s2.Paper
}

func (s *stubSearcher) SearchPapers(_ context.Context, _ string, _ int) ([]s2.Paper, error) {
	return s.papers, nil
}

type stubCitationDB struct {
	citing map[string][]s2.Paper
}

func (s *stubCitationDB) AllCitations(_ context.Context, paperID string, _ int) ([]s2.Paper, error) {
	return s.citing[paperID], nil
}

type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Complete(_ context.Context, _ []oracle.Message) (string, error) {
	return s.reply, nil
}

func testPipeline(fetcher Fetcher) *Pipeline {
	searcher := &stubSearcher{papers: []s2.Paper{
		{PaperID: "s2a", Title: "Neural Machine Translation with Attention", Year: 2016, CitationCount: 120},
		{PaperID: "s2b", Title: "Attention Is All You Need", Year: 2017, CitationCount: 90000},
	}}
	db := &stubCitationDB{citing: map[string][]s2.Paper{
		"s2a": {{PaperID: "c1", Title: "Follow-up on Translation", Year: 2020, CitationCount: 10}},
		"s2b": {{PaperID: "c2", Title: "Transformer Variants", Year: 2021, CitationCount: 400}},
	}}
	completer := &stubCompleter{
		reply: `{"relationship":"builds_on","strength":0.8,"evidence":"attention mechanisms improve translation.","description":"A builds on B"}`,
	}

	cfg := config.Default()
	return New(
		fetcher,
		&stubStructurer{},
		db,
		resolve.New(searcher, nil),
		classify.New(completer, classify.WithBatchDelay(0)),
		cfg,
		nil,
	)
}

func TestRun_EndToEnd(t *testing.T) {
	p := testPipeline(&stubFetcher{})
	urls := []string{"https://example.org/paper-a.pdf", "https://example.org/paper-b.pdf"}

	g, report, err := p.Run(context.Background(), urls)
	if err != nil {
		t.Fatal(err)
	}

	if report.Parsed != 2 {
		t.Errorf("Parsed = %d, want 2", report.Parsed)
	}
	if report.Resolved != 2 {
		t.Errorf("Resolved = %d, want 2", report.Resolved)
	}
	if report.Derivatives != 2 {
		t.Errorf("Derivatives = %d, want 2", report.Derivatives)
	}
	if report.Classification.Classified != 1 {
		t.Errorf("Classification = %+v, want 1 classified", report.Classification)
	}

	idA := "url:" + urls[0]
	idB := "url:" + urls[1]
	for _, id := range []string{idA, idB, "s2:c1", "s2:c2"} {
		if !g.HasNode(id) {
			t.Errorf("missing node %s", id)
		}
	}

	var classified *graph.Edge
	for i := range g.Edges {
		if g.Edges[i].Source == idA && g.Edges[i].Target == idB {
			classified = &g.Edges[i]
		}
	}
	if classified == nil {
		t.Fatalf("missing classified edge %s -> %s in %+v", idA, idB, g.Edges)
	}
	if classified.Relationship != graph.BuildsOn || classified.Strength != 0.8 {
		t.Errorf("edge = %+v", classified)
	}

	var derivative *graph.Edge
	for i := range g.Edges {
		if g.Edges[i].Source == "s2:c1" && g.Edges[i].Target == idA {
			derivative = &g.Edges[i]
		}
	}
	if derivative == nil {
		t.Fatal("missing derivative edge s2:c1 -> paper A")
	}
	if want := graph.DerivativeStrength(10); derivative.Strength != want {
		t.Errorf("derivative strength = %v, want %v", derivative.Strength, want)
	}
}

func TestRun_FetchFailureSkipsPaperOnly(t *testing.T) {
	urls := []string{"https://example.org/paper-a.pdf", "https://example.org/paper-b.pdf"}
	p := testPipeline(&stubFetcher{failures: map[string]bool{urls[0]: true}})

	g, report, err := p.Run(context.Background(), urls)
	if err != nil {
		t.Fatal(err)
	}
	if report.SkippedFetch != 1 || report.Parsed != 1 {
		t.Errorf("report = %+v, want 1 skipped fetch and 1 parsed", report)
	}
	if !g.HasNode("url:" + urls[1]) {
		t.Error("surviving paper missing from graph")
	}
}

func TestRun_AllInputsFailed(t *testing.T) {
	urls := []string{"https://example.org/paper-a.pdf"}
	p := testPipeline(&stubFetcher{failures: map[string]bool{urls[0]: true}})

	_, _, err := p.Run(context.Background(), urls)
	if err == nil {
		t.Error("want error when no input could be processed")
	}
}

func TestTitleFromFirstPage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "first heading line wins",
			text: "  Attention Is All You Need  \nAshish Vaswani, Noam Shazeer\n",
			want: "Attention Is All You Need",
		},
		{
			name: "short lines skipped",
			text: "1\narXiv\nDeep Residual Learning for Image Recognition\nKaiming He\n",
			want: "Deep Residual Learning for Image Recognition",
		},
		{
			name: "overlong line skipped",
			text: strings.Repeat("dense body text ", 20) + "\nA Plausible Heading Instead\n",
			want: "A Plausible Heading Instead",
		},
		{
			name: "nothing plausible",
			text: "7\n\n  \nii\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFromFirstPage(tt.text); got != tt.want {
				t.Errorf("titleFromFirstPage = %q, want %q", got, tt.want)
			}
		})
	}
}
