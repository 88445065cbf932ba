// Package pipeline runs the end-to-end citation-graph build: fetch and
// structure source PDFs, extract citation evidence, resolve identities,
// discover derivative works, and classify relationships into one graph.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/classify"
	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/dedupe"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/pair"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/pdfmeta"
	"github.com/matsen/citegraph/internal/resolve"
	"github.com/matsen/citegraph/internal/s2"
	"github.com/matsen/citegraph/internal/sample"
	"github.com/matsen/citegraph/internal/section"
	"github.com/matsen/citegraph/internal/tei"
	"github.com/matsen/citegraph/internal/window"
)

// Fetcher retrieves raw document bytes from a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Structurer turns PDF bytes into a TEI document tree. *grobid.Client
// satisfies it.
type Structurer interface {
	ProcessFulltext(ctx context.Context, pdf []byte) ([]byte, error)
}

// CitationDB is the subset of the citation-database client the pipeline
// uses directly (identity search goes through the resolver). *s2.Client
// satisfies it.
type CitationDB interface {
	AllCitations(ctx context.Context, paperID string, max int) ([]s2.Paper, error)
}

// Report tallies what a run produced and what it skipped. The pipeline
// always returns a best-effort partial result; the report makes the
// degradation observable.
type Report struct {
	RunID string `json:"run_id"`

	Inputs           int `json:"inputs"`
	Parsed           int `json:"parsed"`
	SkippedFetch     int `json:"skipped_fetch"`
	SkippedStructure int `json:"skipped_structure"`
	SkippedParse     int `json:"skipped_parse"`

	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`

	Derivatives int `json:"derivatives"`

	Classification classify.Stats `json:"classification"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Pipeline wires the pipeline stages together.
type Pipeline struct {
	fetcher      Fetcher
	structurer   Structurer
	db           CitationDB
	resolver     *resolve.Resolver
	orchestrator *classify.Orchestrator
	cfg          *config.Config
	log          *zap.Logger
}

// New assembles a Pipeline. Nil cfg and log fall back to defaults.
func New(fetcher Fetcher, structurer Structurer, db CitationDB,
	resolver *resolve.Resolver, orchestrator *classify.Orchestrator,
	cfg *config.Config, log *zap.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		fetcher:      fetcher,
		structurer:   structurer,
		db:           db,
		resolver:     resolver,
		orchestrator: orchestrator,
		cfg:          cfg,
		log:          log,
	}
}

// Run builds the relationship graph for the papers behind the given
// URLs. Per-paper failures skip that paper; the run always returns a
// graph, possibly partial.
func (p *Pipeline) Run(ctx context.Context, urls []string) (*graph.Graph, *Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Inputs:  len(urls),
		Started: time.Now(),
	}
	log := p.log.With(zap.String("run_id", report.RunID))
	log.Info("starting pipeline run", zap.Int("inputs", len(urls)))

	papers := p.extractAll(ctx, urls, report, log)
	if len(papers) == 0 {
		report.Finished = time.Now()
		return &graph.Graph{}, report, fmt.Errorf("no input paper could be processed")
	}

	p.resolveAll(ctx, papers, report, log)

	derivative := p.derivativeGraph(ctx, papers, report, log)

	pairs := pair.Filter(papers, p.cfg.ConfidenceFloor)
	log.Info("candidate pairs selected", zap.Int("pairs", len(pairs)))

	g, stats := p.orchestrator.Run(ctx, papers, pairs)
	report.Classification = stats

	merged := graph.Merge(g, derivative)
	report.Finished = time.Now()
	log.Info("pipeline run complete",
		zap.Int("nodes", len(merged.Nodes)),
		zap.Int("edges", len(merged.Edges)))
	return merged, report, nil
}

// extractAll fetches, structures, and parses every input into a Paper
// with deduplicated citation occurrences.
func (p *Pipeline) extractAll(ctx context.Context, urls []string, report *Report, log *zap.Logger) []*paper.Paper {
	var papers []*paper.Paper
	for _, url := range urls {
		pp, err := p.extractOne(ctx, url, report)
		if err != nil {
			log.Warn("skipping input paper", zap.String("url", url), zap.Error(err))
			continue
		}
		report.Parsed++
		log.Info("extracted paper",
			zap.String("id", pp.ID),
			zap.String("title", pp.Title),
			zap.Int("citations", len(pp.Citations)))
		papers = append(papers, pp)
	}
	return papers
}

func (p *Pipeline) extractOne(ctx context.Context, url string, report *Report) (*paper.Paper, error) {
	pdf, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		report.SkippedFetch++
		return nil, fmt.Errorf("fetching: %w", err)
	}

	teiXML, err := p.structurer.ProcessFulltext(ctx, pdf)
	if err != nil {
		report.SkippedStructure++
		return nil, fmt.Errorf("structuring: %w", err)
	}

	doc, err := tei.Parse(teiXML)
	if err != nil {
		report.SkippedParse++
		return nil, fmt.Errorf("parsing: %w", err)
	}

	pp := &paper.Paper{
		ID:       "url:" + url,
		Title:    doc.Title,
		Authors:  doc.Authors,
		Year:     doc.Year,
		Abstract: doc.Abstract,
		Venue:    doc.Venue,
		URL:      url,
	}
	if doi := pdfmeta.ExtractDOI(pdf); doi != "" {
		pp.ID = "doi:" + s2.NormalizeDOI(doi)
	}
	if pp.Title == paper.UnknownTitle {
		if t := titleFromFirstPage(pdfmeta.FirstPageText(pdf)); t != "" {
			pp.Title = t
		}
	}

	pp.Citations = dedupe.Occurrences(p.occurrences(doc))
	return pp, nil
}

// titleFromFirstPage guesses a title from raw first-page text when
// structuring yielded none: the first line that looks like a heading.
// Best effort; returns "" when nothing plausible turns up.
func titleFromFirstPage(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 200 {
			continue
		}
		if len(strings.Fields(line)) >= 3 {
			return line
		}
	}
	return ""
}

// occurrences walks the relevant sections (or the whole document when no
// header matches) and builds a sentence-aligned context window around
// every citation marker.
func (p *Pipeline) occurrences(doc *tei.Document) []paper.Occurrence {
	relevant := map[string]bool{}
	for _, title := range section.Relevant(doc.SectionTitles()) {
		relevant[title] = true
	}
	scanAll := len(relevant) == 0

	var occs []paper.Occurrence
	for _, sec := range doc.Sections {
		if !scanAll && !relevant[sec.Title] {
			continue
		}
		for _, ref := range sec.Refs {
			entry, ok := doc.Bibliography[ref.BibID]
			if !ok {
				continue
			}
			w := window.Build(sec.Text, ref.Marker, p.cfg.WindowRadius)
			occs = append(occs, paper.Occurrence{
				BibID:         ref.BibID,
				Title:         entry.Title,
				Authors:       entry.Authors,
				Year:          entry.Year,
				Marker:        ref.Marker,
				Context:       w.Context,
				ContextBefore: w.Before,
				ContextAfter:  w.After,
				Section:       sec.Title,
			})
		}
	}
	return occs
}

// resolveAll matches each input paper against the citation database and
// backfills metadata from the richer side.
func (p *Pipeline) resolveAll(ctx context.Context, papers []*paper.Paper, report *Report, log *zap.Logger) {
	for _, pp := range papers {
		found, err := p.resolver.Resolve(ctx, resolve.Query{
			Title:   pp.Title,
			Authors: pp.Authors,
			Year:    pp.Year,
		})
		if err != nil || found == nil {
			report.Unresolved++
			log.Debug("identity unresolved",
				zap.String("id", pp.ID), zap.Error(err))
			continue
		}
		report.Resolved++
		pp.ExternalID = found.PaperID
		pp.Backfill(s2.MapPaper(*found))
		log.Debug("identity resolved",
			zap.String("id", pp.ID),
			zap.String("external_id", found.PaperID))
	}
}

// derivativeGraph discovers papers citing the inputs, samples them
// across years, and links them with log-scaled strengths.
func (p *Pipeline) derivativeGraph(ctx context.Context, papers []*paper.Paper, report *Report, log *zap.Logger) *graph.Graph {
	g := &graph.Graph{}
	for _, pp := range papers {
		if pp.ExternalID == "" {
			continue
		}

		// Two passes: a shallow one biased toward well-cited papers,
		// and a broad one for year coverage.
		shallow, err := p.db.AllCitations(ctx, pp.ExternalID, p.cfg.SampleCap*2)
		if err != nil {
			log.Warn("citation fetch failed",
				zap.String("id", pp.ID), zap.Error(err))
			continue
		}
		cited := shallow[:0:0]
		for _, c := range shallow {
			if c.CitationCount > 0 {
				cited = append(cited, c)
			}
		}
		broad, err := p.db.AllCitations(ctx, pp.ExternalID, p.cfg.MaxCitations)
		if err != nil {
			broad = nil
		}

		sourceYear, _ := strconv.Atoi(pp.Year)
		sampled := sample.ByYear(sample.MergeCandidates(cited, broad), sourceYear, p.cfg.SampleCap)
		report.Derivatives += len(sampled)

		g.AddNode(graph.NodeFromPaper(*pp))
		for _, citing := range sampled {
			node := graph.NodeFromPaper(s2.MapPaper(citing))
			g.AddNode(node)
			g.SetEdge(graph.Edge{
				Source:       node.ID,
				Target:       pp.ID,
				Relationship: graph.BuildsOn,
				Strength:     graph.DerivativeStrength(citing.CitationCount),
				Description:  "derivative work citing " + pp.Title,
			})
		}
		log.Info("derivative works sampled",
			zap.String("id", pp.ID), zap.Int("sampled", len(sampled)))
	}
	return g
}

// HTTPFetcher fetches PDFs over HTTP.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with a download-friendly timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 2 * time.Minute}}
}

// Fetch downloads the document at url.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}
