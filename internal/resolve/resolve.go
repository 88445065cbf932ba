// Package resolve matches a bare title/author/year reference against the
// Semantic Scholar search API using a cascade of query strategies.
package resolve

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/s2"
)

const (
	// AcceptScore is the score a top candidate must exceed to be accepted.
	AcceptScore = 0.15

	// SoleCandidateScore is the relaxed floor applied when the search
	// returned exactly one candidate.
	SoleCandidateScore = 0.08

	// Candidate-scoring bonuses on top of title Jaccard similarity.
	authorBonus = 0.2
	yearBonus   = 0.1

	// significantWordCount caps the truncated-title query strategy.
	significantWordCount = 6

	// searchLimit is the number of candidates requested per query.
	searchLimit = 10

	// cacheSize bounds the resolution cache.
	cacheSize = 512
)

// Searcher is the search capability the resolver needs. *s2.Client
// satisfies it.
type Searcher interface {
	SearchPapers(ctx context.Context, query string, limit int) ([]s2.Paper, error)
}

// Query identifies the paper to resolve. Authors and Year may be empty.
type Query struct {
	Title   string
	Authors []string
	Year    string
}

// Resolver resolves citations to external paper identities, caching
// results (including misses) keyed on the normalized query.
type Resolver struct {
	searcher Searcher
	cache    *lru.Cache[string, *s2.Paper]
	log      *zap.Logger
}

// New creates a Resolver backed by the given searcher.
func New(searcher Searcher, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	cache, _ := lru.New[string, *s2.Paper](cacheSize)
	return &Resolver{searcher: searcher, cache: cache, log: log}
}

// Resolve returns the best-matching external paper for the query, or
// (nil, nil) when no candidate scores above the acceptance floor.
// Strategies are issued in turn until one returns a non-empty result
// set, which is then scored; empty results and search failures fall
// through to the next strategy. Only a query with no usable title is
// an error.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*s2.Paper, error) {
	norm := paper.NormalizeTitle(q.Title)
	if norm == "" {
		return nil, fmt.Errorf("resolving citation: empty title")
	}

	key := cacheKey(q, norm)
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	type scored struct {
		paper s2.Paper
		score float64
		sole  bool
	}
	var best *scored
	var lastErr error

	for _, query := range r.queries(q, norm) {
		candidates, err := r.searcher.SearchPapers(ctx, query, searchLimit)
		if err != nil {
			lastErr = err
			r.log.Debug("search strategy failed",
				zap.String("query", query), zap.Error(err))
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		sole := len(candidates) == 1
		for i := range candidates {
			score := scoreCandidate(q, norm, candidates[i])
			if score >= 1.0 {
				// Exact or containing title: definite match.
				r.cache.Add(key, &candidates[i])
				return &candidates[i], nil
			}
			// Strict inequality keeps ties with the earliest candidate.
			if best == nil || score > best.score {
				best = &scored{paper: candidates[i], score: score, sole: sole}
			}
		}
		// The first strategy that returns results decides; later
		// strategies are never issued.
		break
	}

	if best != nil && (best.score > AcceptScore ||
		(best.sole && best.score > SoleCandidateScore)) {
		r.cache.Add(key, &best.paper)
		return &best.paper, nil
	}
	if lastErr != nil && best == nil {
		return nil, fmt.Errorf("resolving %q: %w", q.Title, lastErr)
	}
	r.cache.Add(key, nil)
	return nil, nil
}

// queries builds the ordered search-strategy cascade. Strategies whose
// required fields are missing collapse into their fallbacks; duplicates
// are dropped.
func (r *Resolver) queries(q Query, normTitle string) []string {
	surname := ""
	if len(q.Authors) > 0 {
		surname = paper.Surname(q.Authors[0])
	}
	year := ""
	if paper.ValidYear(q.Year) {
		year = q.Year
	}

	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}

	if surname != "" && year != "" {
		add(q.Title + " " + surname + " " + year)
	}
	if surname != "" {
		add(q.Title + " " + surname)
	}
	if year != "" {
		add(q.Title + " " + year)
	}
	add(strings.Join(paper.SignificantWords(q.Title, significantWordCount), " "))
	add(q.Title)
	return out
}

// scoreCandidate scores a search result against the query: title Jaccard
// similarity, boosted to 1.0 on exact or containing normalized titles,
// plus author-surname and year bonuses.
func scoreCandidate(q Query, normTitle string, cand s2.Paper) float64 {
	candNorm := paper.NormalizeTitle(cand.Title)
	if candNorm == "" {
		return 0
	}

	var score float64
	if candNorm == normTitle ||
		strings.Contains(candNorm, normTitle) ||
		strings.Contains(normTitle, candNorm) {
		score = 1.0
	} else {
		score = paper.Jaccard(normTitle, candNorm)
	}

	if len(q.Authors) > 0 && authorMatch(q.Authors, cand.Authors) {
		score += authorBonus
	}
	if paper.ValidYear(q.Year) && cand.Year > 0 &&
		strconv.Itoa(cand.Year) == q.Year {
		score += yearBonus
	}
	return score
}

func authorMatch(queryAuthors []string, candAuthors []s2.Author) bool {
	for _, qa := range queryAuthors {
		qs := paper.Surname(qa)
		if qs == "" {
			continue
		}
		for _, ca := range candAuthors {
			cs := paper.Surname(ca.Name)
			if cs != "" && (cs == qs || strings.Contains(cs, qs) || strings.Contains(qs, cs)) {
				return true
			}
		}
	}
	return false
}

func cacheKey(q Query, normTitle string) string {
	surname := ""
	if len(q.Authors) > 0 {
		surname = paper.Surname(q.Authors[0])
	}
	return normTitle + "|" + surname + "|" + q.Year
}
