// Package classify orchestrates relationship classification over
// candidate paper pairs: it gates pairs on citation evidence, fans calls
// out to the oracle in small concurrent batches, and assembles the
// resulting graph.
package classify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/oracle"
	"github.com/matsen/citegraph/internal/pair"
	"github.com/matsen/citegraph/internal/paper"
)

const (
	// DefaultBatchSize is the number of concurrent oracle calls per batch.
	DefaultBatchSize = 3

	// DefaultBatchDelay paces consecutive batches.
	DefaultBatchDelay = time.Second

	// DefaultCallTimeout bounds one oracle call. A timeout skips the
	// pair, it never aborts the run.
	DefaultCallTimeout = 60 * time.Second
)

const systemPrompt = `You are an expert at analyzing relationships between academic papers.
Given citation contexts from a source paper referring to a target paper, classify the relationship.
Respond with a single JSON object:
{"relationship": one of "builds_on", "extends", "applies", "compares", "surveys", "critiques" or null if none applies,
 "strength": a number between 0 and 1,
 "evidence": a verbatim quote from the citation context supporting the classification,
 "description": a one-sentence summary of how the source relates to the target}`

// Stats counts the fate of every candidate pair in a classification run.
type Stats struct {
	Pairs             int `json:"pairs"`
	SkippedNoEvidence int `json:"skipped_no_evidence"`
	Classified        int `json:"classified"`
	NoRelationship    int `json:"no_relationship"`
	Failed            int `json:"failed"`
}

// Orchestrator runs batched relationship classification.
type Orchestrator struct {
	completer   oracle.Completer
	batchSize   int
	batchDelay  time.Duration
	callTimeout time.Duration
	log         *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBatchSize sets the per-batch concurrency.
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between batches.
func WithBatchDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.batchDelay = d }
}

// WithCallTimeout sets the per-call oracle timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New creates an Orchestrator using the given oracle.
func New(completer oracle.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		completer:   completer,
		batchSize:   DefaultBatchSize,
		batchDelay:  DefaultBatchDelay,
		callTimeout: DefaultCallTimeout,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run classifies the candidate pairs and returns the assembled graph.
// Nodes follow the input paper order; edges carry whatever the oracle
// produced for pairs with citation evidence. Failures and empty
// classifications skip the pair and are tallied in Stats.
func (o *Orchestrator) Run(ctx context.Context, papers []*paper.Paper, pairs []pair.Pair) (*graph.Graph, Stats) {
	g := &graph.Graph{}
	for _, p := range papers {
		g.AddNode(graph.NodeFromPaper(*p))
	}

	stats := Stats{Pairs: len(pairs)}

	// Evidence gate: a pair with no in-text citation of the target is
	// never worth an oracle call.
	var gated []pair.Pair
	for _, pr := range pairs {
		if !paper.CitesTitle(pr.Source, pr.Target.Title) {
			stats.SkippedNoEvidence++
			continue
		}
		gated = append(gated, pr)
	}

	var mu sync.Mutex
	for start := 0; start < len(gated); start += o.batchSize {
		if start > 0 && o.batchDelay > 0 {
			select {
			case <-time.After(o.batchDelay):
			case <-ctx.Done():
				return g, stats
			}
		}

		end := start + o.batchSize
		if end > len(gated) {
			end = len(gated)
		}
		batch := gated[start:end]

		var wg sync.WaitGroup
		for _, pr := range batch {
			wg.Add(1)
			go func(pr pair.Pair) {
				defer wg.Done()
				edge, err := o.classifyPair(ctx, pr)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					stats.Failed++
					o.log.Warn("classification failed",
						zap.String("source", pr.Source.ID),
						zap.String("target", pr.Target.ID),
						zap.Error(err))
				case edge == nil:
					stats.NoRelationship++
				default:
					if g.SetEdge(*edge) {
						stats.Classified++
					} else {
						stats.Failed++
					}
				}
			}(pr)
		}
		wg.Wait()

		o.log.Debug("classification batch complete",
			zap.Int("done", end), zap.Int("total", len(gated)))
	}

	return g, stats
}

// classifyPair issues one oracle call and turns the reply into an edge.
// A (nil, nil) return means the oracle found no relationship.
func (o *Orchestrator) classifyPair(ctx context.Context, pr pair.Pair) (*graph.Edge, error) {
	contexts := citationContexts(pr.Source, pr.Target.Title)

	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	reply, err := o.completer.Complete(callCtx, []oracle.Message{
		{Role: oracle.RoleSystem, Content: systemPrompt},
		{Role: oracle.RoleUser, Content: buildPrompt(pr, contexts)},
	})
	if err != nil {
		return nil, fmt.Errorf("classifying %s -> %s: %w", pr.Source.ID, pr.Target.ID, err)
	}

	c, err := oracle.ParseClassification(reply)
	if err != nil || c == nil {
		// Unparseable or null means no relationship found, not an error.
		return nil, nil
	}
	if !graph.ValidRelationships[c.Relationship] {
		return nil, nil
	}

	return &graph.Edge{
		Source:       pr.Source.ID,
		Target:       pr.Target.ID,
		Relationship: c.Relationship,
		Strength:     c.Strength,
		Evidence:     oracle.RepairEvidence(c.Evidence, strings.Join(contexts, "\n")),
		Description:  c.Description,
	}, nil
}

// citationContexts collects the context windows of every occurrence in
// source that fuzzy-matches the target title.
func citationContexts(source *paper.Paper, targetTitle string) []string {
	var out []string
	for _, occ := range source.Citations {
		if !paper.FuzzyTitleMatch(occ.Title, targetTitle) {
			continue
		}
		if occ.Context != "" {
			out = append(out, occ.Context)
		}
	}
	return out
}

func buildPrompt(pr pair.Pair, contexts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source paper: %q", pr.Source.Title)
	if pr.Source.Year != "" {
		fmt.Fprintf(&b, " (%s)", pr.Source.Year)
	}
	fmt.Fprintf(&b, "\nTarget paper: %q", pr.Target.Title)
	if pr.Target.Year != "" {
		fmt.Fprintf(&b, " (%s)", pr.Target.Year)
	}
	b.WriteString("\n\nCitation contexts from the source paper:\n")
	for i, c := range contexts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	return b.String()
}
