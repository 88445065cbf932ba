package tei

import (
	"strings"
	"testing"
)

const sampleTEI = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
 <teiHeader>
  <fileDesc>
   <titleStmt>
    <title level="a" type="main">Attention Is All You Need</title>
   </titleStmt>
   <sourceDesc>
    <biblStruct>
     <analytic>
      <author><persName><forename type="first">Ashish</forename><surname>Vaswani</surname></persName></author>
      <author><persName><forename type="first">Noam</forename><surname>Shazeer</surname></persName></author>
      <author><persName><surname>Google</surname></persName></author>
     </analytic>
     <monogr>
      <title level="m">Advances in Neural Information Processing Systems</title>
      <imprint><date type="published" when="2017-06-12">2017</date></imprint>
     </monogr>
    </biblStruct>
   </sourceDesc>
  </fileDesc>
  <profileDesc>
   <abstract>
    <div><p>The dominant sequence models [1] are based on recurrence (Cho et al., 2014).
    We propose the Transformer (2017), based solely on attention.</p></div>
   </abstract>
  </profileDesc>
 </teiHeader>
 <text>
  <body>
   <div><head n="1">Introduction</head><p>Recurrent networks <ref type="bibr" target="#b0">[1]</ref> dominate
   sequence modeling. Attention mechanisms <ref type="bibr" target="#b1">[2]</ref> help.</p></div>
   <div><head n="2">Model Architecture</head><p>We stack layers.</p></div>
  </body>
  <back>
   <div type="references">
    <listBibl>
     <biblStruct xml:id="b0">
      <analytic>
       <title level="a" type="main">Sequence to Sequence Learning with Neural Networks</title>
       <author><persName><forename type="first">Ilya</forename><surname>Sutskever</surname></persName></author>
      </analytic>
      <monogr><title level="m">NIPS</title><imprint><date type="published" when="2014">2014</date></imprint></monogr>
     </biblStruct>
     <biblStruct xml:id="b1">
      <analytic>
       <title level="a" type="main">Neural Machine Translation by Jointly Learning to Align and Translate</title>
       <author><persName><forename type="first">Dzmitry</forename><surname>Bahdanau</surname></persName></author>
      </analytic>
      <monogr><title level="m">ICLR</title><imprint><date type="published" when="2015">2015</date></imprint></monogr>
     </biblStruct>
    </listBibl>
   </div>
  </back>
 </text>
</TEI>`

func TestParse_Metadata(t *testing.T) {
	doc, err := Parse([]byte(sampleTEI))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", doc.Title)
	}
	// The single-token "author" Google is an affiliation leak and must
	// be filtered out.
	want := []string{"Ashish Vaswani", "Noam Shazeer"}
	if len(doc.Authors) != len(want) {
		t.Fatalf("Authors = %v, want %v", doc.Authors, want)
	}
	for i := range want {
		if doc.Authors[i] != want[i] {
			t.Errorf("Authors[%d] = %q, want %q", i, doc.Authors[i], want[i])
		}
	}
	if doc.Year != "2017" {
		t.Errorf("Year = %q", doc.Year)
	}
	if doc.Venue != "Advances in Neural Information Processing Systems" {
		t.Errorf("Venue = %q", doc.Venue)
	}
}

func TestParse_AbstractStripsMarkers(t *testing.T) {
	doc, err := Parse([]byte(sampleTEI))
	if err != nil {
		t.Fatal(err)
	}
	want := "The dominant sequence models are based on recurrence . We propose the Transformer , based solely on attention."
	if doc.Abstract != want {
		t.Errorf("Abstract = %q, want %q", doc.Abstract, want)
	}
}

func TestParse_Sections(t *testing.T) {
	doc, err := Parse([]byte(sampleTEI))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("Sections = %d, want 2", len(doc.Sections))
	}
	intro := doc.Sections[0]
	if intro.Title != "Introduction" {
		t.Errorf("Title = %q", intro.Title)
	}
	if len(intro.Refs) != 2 {
		t.Fatalf("Refs = %v, want 2 markers", intro.Refs)
	}
	if intro.Refs[0].BibID != "b0" || intro.Refs[0].Marker != "[1]" {
		t.Errorf("Refs[0] = %+v", intro.Refs[0])
	}
	if intro.Refs[1].BibID != "b1" || intro.Refs[1].Marker != "[2]" {
		t.Errorf("Refs[1] = %+v", intro.Refs[1])
	}

	titles := doc.SectionTitles()
	if len(titles) != 2 || titles[0] != "Introduction" || titles[1] != "Model Architecture" {
		t.Errorf("SectionTitles = %v", titles)
	}
}

func TestParse_Bibliography(t *testing.T) {
	doc, err := Parse([]byte(sampleTEI))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Bibliography) != 2 {
		t.Fatalf("Bibliography = %d entries, want 2", len(doc.Bibliography))
	}
	b0, ok := doc.Bibliography["b0"]
	if !ok {
		t.Fatal("missing entry b0")
	}
	if b0.Title != "Sequence to Sequence Learning with Neural Networks" {
		t.Errorf("b0.Title = %q", b0.Title)
	}
	if len(b0.Authors) != 1 || b0.Authors[0] != "Ilya Sutskever" {
		t.Errorf("b0.Authors = %v", b0.Authors)
	}
	if b0.Year != "2014" {
		t.Errorf("b0.Year = %q", b0.Year)
	}
}

func TestParse_MarkersLocatableInSectionText(t *testing.T) {
	doc, err := Parse([]byte(sampleTEI))
	if err != nil {
		t.Fatal(err)
	}
	intro := doc.Sections[0]
	for _, ref := range intro.Refs {
		if !strings.Contains(intro.Text, ref.Marker) {
			t.Errorf("marker %q not found in section text %q", ref.Marker, intro.Text)
		}
	}
}

func TestParse_MissingFieldsDegradeToSentinels(t *testing.T) {
	minimal := `<TEI xmlns="http://www.tei-c.org/ns/1.0"><teiHeader/><text><body/></text></TEI>`
	doc, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Unknown Title" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Year != "Unknown" {
		t.Errorf("Year = %q", doc.Year)
	}
	if len(doc.Sections) != 0 || len(doc.Bibliography) != 0 {
		t.Errorf("want empty sections and bibliography")
	}
}

func TestParse_Unparsable(t *testing.T) {
	if _, err := Parse([]byte("not xml at all <<<")); err == nil {
		t.Error("want error for unparsable input")
	}
}

func TestStripMarkers(t *testing.T) {
	tests := []struct{ in, want string }{
		{"models [12] work", "models work"},
		{"models [1, 2, 3] work", "models work"},
		{"as shown (Smith et al., 2020) here", "as shown here"},
		{"proposed (2020) recently", "proposed recently"},
		{"no markers here", "no markers here"},
	}
	for _, tt := range tests {
		if got := StripMarkers(tt.in); got != tt.want {
			t.Errorf("StripMarkers(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
