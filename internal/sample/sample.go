// Package sample rebalances citing-paper candidates across publication
// years. Paginated citation fetches are biased toward recent papers; the
// sampler guarantees every populated year in the eligible range is
// represented before recency-weighted backfill takes over.
package sample

import (
	"sort"
	"time"

	"github.com/matsen/citegraph/internal/s2"
)

const (
	// MinYear is the oldest publication year considered plausible.
	MinYear = 1900

	// maxQuotaYears caps the divisor when computing the per-year quota,
	// so sparse year ranges still get a usable quota.
	maxQuotaYears = 15
)

// ByYear selects up to cap papers from candidates, spreading the
// selection across the publication years between sourceYear and the
// current year. Candidates with implausible years are discarded and
// duplicates (by external id) are dropped. The result is sorted by year
// descending.
func ByYear(candidates []s2.Paper, sourceYear, cap int) []s2.Paper {
	return byYear(candidates, sourceYear, cap, time.Now().Year())
}

func byYear(candidates []s2.Paper, sourceYear, cap, currentYear int) []s2.Paper {
	if cap <= 0 || len(candidates) == 0 {
		return nil
	}
	if sourceYear < MinYear {
		sourceYear = MinYear
	}

	buckets := map[int][]s2.Paper{}
	seen := map[string]bool{}
	for _, p := range candidates {
		if p.PaperID == "" || seen[p.PaperID] {
			continue
		}
		if p.Year < MinYear || p.Year > currentYear || p.Year < sourceYear {
			continue
		}
		seen[p.PaperID] = true
		buckets[p.Year] = append(buckets[p.Year], p)
	}
	if len(buckets) == 0 {
		return nil
	}

	years := make([]int, 0, len(buckets))
	for y := range buckets {
		years = append(years, y)
		sort.Slice(buckets[y], func(i, j int) bool {
			return buckets[y][i].CitationCount > buckets[y][j].CitationCount
		})
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	divisor := len(years)
	if divisor > maxQuotaYears {
		divisor = maxQuotaYears
	}
	quota := cap / divisor
	if quota < 1 {
		quota = 1
	}

	var sampled []s2.Paper
	var leftovers []s2.Paper
	for _, y := range years {
		bucket := buckets[y]
		take := quota
		if take > len(bucket) {
			take = len(bucket)
		}
		if len(sampled)+take > cap {
			take = cap - len(sampled)
		}
		sampled = append(sampled, bucket[:take]...)
		leftovers = append(leftovers, bucket[take:]...)
	}

	// Backfill the unused budget with the most-cited leftovers.
	if len(sampled) < cap && len(leftovers) > 0 {
		sort.Slice(leftovers, func(i, j int) bool {
			return leftovers[i].CitationCount > leftovers[j].CitationCount
		})
		need := cap - len(sampled)
		if need > len(leftovers) {
			need = len(leftovers)
		}
		sampled = append(sampled, leftovers[:need]...)
	}

	sort.SliceStable(sampled, func(i, j int) bool {
		return sampled[i].Year > sampled[j].Year
	})
	return sampled
}

// MergeCandidates unions two candidate passes, deduplicating by external
// id with first occurrence winning.
func MergeCandidates(a, b []s2.Paper) []s2.Paper {
	seen := map[string]bool{}
	out := make([]s2.Paper, 0, len(a)+len(b))
	for _, p := range append(append([]s2.Paper{}, a...), b...) {
		if p.PaperID == "" || seen[p.PaperID] {
			continue
		}
		seen[p.PaperID] = true
		out = append(out, p)
	}
	return out
}
