package news

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"newsradar/internal/cache"
	"newsradar/internal/dedup"
	"newsradar/internal/gemini"
	"newsradar/internal/metrics"
	"newsradar/internal/ratelimit"
	"newsradar/internal/retry"
	"newsradar/internal/source"
)

// Analyzer is the AI collaborator. *gemini.Client satisfies it; tests stub it.
type Analyzer interface {
	Analyze(ctx context.Context, headline, body string) (*gemini.Analysis, error)
}

// Resolver follows indirection URLs to their canonical destination.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) string
}

// Extractor pulls body text from an article page.
type Extractor interface {
	Text(ctx context.Context, articleURL string) (string, error)
}

// Enricher runs the per-candidate pipeline: resolve, gate, extract, analyze,
// assemble. It holds no mutable state of its own; many instances of Enrich
// run concurrently and only read shared structures.
type Enricher struct {
	Resolver  Resolver
	Extractor Extractor
	Analyzer  Analyzer // nil = no backend configured, fallback records only
	Cache     *cache.Cache
	Limiter   *ratelimit.AnalysisLimiter
	Retry     retry.Config
}

// Enrich processes one candidate. The second return value is false when the
// item was rejected (already seen). Enrich never mutates seen; registration
// of accepted items belongs to the pool's collector.
func (e *Enricher) Enrich(ctx context.Context, cand source.CandidateItem, seen *dedup.SeenSet) (*Article, bool) {
	canonical := cand.URL
	if e.Resolver != nil {
		canonical = e.Resolver.Resolve(ctx, cand.URL)
	}

	// Second gate: resolution may reveal a URL the batch filter never saw.
	if seen.HasURL(canonical) || seen.HasURL(cand.URL) || seen.HasTitle(cand.Title) {
		metrics.Global.IncrementDuplicates()
		return nil, false
	}

	body := e.extractBody(ctx, canonical, cand)
	analysis := e.analyze(ctx, cand, body)

	publishedAt := cand.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	sourceName := cand.Publisher
	if sourceName == "" {
		sourceName = "News"
	}

	return &Article{
		CanonicalURL: canonical,
		Title:        cand.Title,
		TitleFa:      analysis.Title,
		Summary:      analysis.Summary,
		Impact:       analysis.Impact,
		Tag:          analysis.Tag,
		Urgency:      clampUrgency(analysis.Urgency),
		Sentiment:    analysis.Sentiment,
		Source:       sourceName,
		PublishedAt:  publishedAt.Unix(),
		Image:        cand.Image,
	}, true
}

func (e *Enricher) extractBody(ctx context.Context, canonical string, cand source.CandidateItem) string {
	if e.Extractor != nil {
		text, err := e.Extractor.Text(ctx, canonical)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			log.Printf("Extraction fell back to snippet for %s: %v", canonical, err)
		}
	}
	return cand.Description
}

// analyze returns a usable Analysis in all cases: cached, fresh from the
// backend, or the deterministic fallback when the backend is missing, over
// budget, or exhausted its retries. The run never fails here.
func (e *Enricher) analyze(ctx context.Context, cand source.CandidateItem, body string) *gemini.Analysis {
	title := cand.Title

	if e.Analyzer == nil {
		metrics.Global.IncrementFallbacks()
		return fallbackAnalysis(title, cand.Description)
	}

	key := cache.Key(title, body)
	if e.Cache != nil {
		if cached, ok := e.Cache.Get(key); ok {
			if e.Limiter != nil {
				e.Limiter.RecordCacheHit()
			}
			return cached
		}
	}

	if e.Limiter != nil {
		if err := e.Limiter.Allow(); err != nil {
			log.Printf("Analysis skipped for %q: %v", title, err)
			metrics.Global.IncrementFallbacks()
			return fallbackAnalysis(title, cand.Description)
		}
	}

	var result *gemini.Analysis
	err := retry.Do(ctx, e.Retry, func() error {
		a, err := e.Analyzer.Analyze(ctx, title, body)
		if err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		if !errors.Is(err, retry.ErrExhausted) && !errors.Is(err, context.Canceled) {
			log.Printf("Analysis error for %q: %v", title, err)
		}
		metrics.Global.IncrementAnalysisFailures()
		metrics.Global.IncrementFallbacks()
		return fallbackAnalysis(title, cand.Description)
	}

	if e.Cache != nil {
		e.Cache.Set(key, result)
	}
	return result
}

// fallbackAnalysis builds a deterministic record from the raw title and feed
// snippet. Policy decision: exhausted or unconfigured analysis keeps the item
// with this record rather than dropping it.
func fallbackAnalysis(title, snippet string) *gemini.Analysis {
	return &gemini.Analysis{
		Title:     title, // untranslated; better than losing the item
		Summary:   snippetBullets(snippet, title),
		Tag:       keywordTag(title + " " + snippet),
		Urgency:   gemini.DefaultUrgency,
		Sentiment: 0,
	}
}

// keywordTag auto-tags by headline keywords, checked most-specific first.
func keywordTag(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "nuclear") || strings.Contains(t, "atomic") || strings.Contains(t, "enrichment"):
		return "nuclear"
	case strings.Contains(t, "israel") || strings.Contains(t, "attack") || strings.Contains(t, "war") || strings.Contains(t, "strike") || strings.Contains(t, "missile"):
		return "military"
	case strings.Contains(t, "protest") || strings.Contains(t, "rights") || strings.Contains(t, "woman") || strings.Contains(t, "women"):
		return "social"
	case strings.Contains(t, "sanction") || strings.Contains(t, "oil") || strings.Contains(t, "currency") || strings.Contains(t, "rial"):
		return "economy"
	default:
		return "politics"
	}
}

// Feed descriptions routinely carry inline markup.
var reTags = regexp.MustCompile(`<[^>]*>`)

// snippetBullets picks up to three substantial sentences from the snippet.
func snippetBullets(snippet, title string) []string {
	s := strings.TrimSpace(reTags.ReplaceAllString(snippet, " "))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return []string{title}
	}

	var bullets []string
	for _, sent := range strings.Split(s, ".") {
		sent = strings.TrimSpace(sent)
		if len(sent) < 25 {
			continue
		}
		bullets = append(bullets, sent+".")
		if len(bullets) == 3 {
			break
		}
	}
	if len(bullets) == 0 {
		if len(s) > 160 {
			s = s[:160] + "..."
		}
		bullets = []string{s}
	}
	return bullets
}

func clampUrgency(n int) int {
	if n < 1 || n > 10 {
		return gemini.DefaultUrgency
	}
	return n
}
