package news

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"newsradar/internal/dedup"
	"newsradar/internal/metrics"
	"newsradar/internal/source"
)

// Pool runs enrichment workers over a batch with bounded parallelism and
// collects results in completion order. A single collector goroutine owns all
// SeenSet registration, so two workers finishing the same story from
// different sources cannot both be accepted.
type Pool struct {
	Enricher *Enricher
	Workers  int
}

// Run enriches the batch and returns the accepted articles in completion
// order, plus every URL to log to history (canonical and, where resolution
// changed it, the original feed link). Downstream sorting restores a
// deterministic presentation order.
func (p *Pool) Run(ctx context.Context, cands []source.CandidateItem, seen *dedup.SeenSet) ([]Article, []string) {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}

	type outcome struct {
		article  *Article
		original string // pre-resolution URL, logged to history alongside the canonical one
	}
	results := make(chan outcome)

	var accepted []Article
	var historyURLs []string
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for out := range results {
			a := out.article
			// Re-check under the collector's serialization: a sibling worker
			// may have registered the same story while this one was in flight.
			if seen.HasURL(a.CanonicalURL) || seen.HasTitle(a.Title) {
				metrics.Global.IncrementDuplicates()
				log.Printf("Late duplicate dropped: %s", a.Title)
				continue
			}
			seen.Add(a.CanonicalURL, a.Title)
			seen.AddURL(out.original)
			historyURLs = append(historyURLs, a.CanonicalURL)
			if out.original != a.CanonicalURL {
				historyURLs = append(historyURLs, out.original)
			}
			accepted = append(accepted, *a)
			metrics.Global.IncrementEnriched()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, cand := range cands {
		cand := cand
		g.Go(func() error {
			if article, ok := p.Enricher.Enrich(gctx, cand, seen); ok {
				select {
				case results <- outcome{article: article, original: cand.URL}:
				case <-gctx.Done():
				}
			}
			return nil
		})
	}

	g.Wait()
	close(results)
	<-collectorDone

	return accepted, historyURLs
}
