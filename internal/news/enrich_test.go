package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsradar/internal/dedup"
	"newsradar/internal/gemini"
	"newsradar/internal/retry"
	"newsradar/internal/source"
)

type stubAnalyzer struct {
	analysis *gemini.Analysis
	err      error
	calls    int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, headline, body string) (*gemini.Analysis, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, Delay: time.Millisecond}
}

func candidate(url, title, desc string) source.CandidateItem {
	return source.CandidateItem{
		Title:       title,
		URL:         url,
		Publisher:   "Test Wire",
		Description: desc,
		PublishedAt: time.Unix(1700000000, 0),
	}
}

func TestEnrichHappyPath(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &gemini.Analysis{
		Title:     "تیتر",
		Summary:   []string{"one", "two", "three"},
		Impact:    "Impact.",
		Tag:       "military",
		Urgency:   8,
		Sentiment: -0.5,
	}}
	e := &Enricher{Analyzer: analyzer, Retry: fastRetry()}

	a, ok := e.Enrich(context.Background(), candidate("https://x/1", "Iran strikes base", "desc"), dedup.NewSeenSet())
	require.True(t, ok)

	assert.Equal(t, "https://x/1", a.CanonicalURL)
	assert.Equal(t, "Iran strikes base", a.Title)
	assert.Equal(t, "تیتر", a.TitleFa)
	assert.Equal(t, 8, a.Urgency)
	assert.Equal(t, "military", a.Tag)
	assert.Equal(t, "Test Wire", a.Source)
	assert.Equal(t, int64(1700000000), a.PublishedAt)
	assert.Equal(t, 1, analyzer.calls)
}

func TestEnrichGateRejectsSeenURL(t *testing.T) {
	seen := dedup.NewSeenSet()
	seen.AddURL("https://x/1")

	e := &Enricher{Retry: fastRetry()}
	_, ok := e.Enrich(context.Background(), candidate("https://x/1", "Anything", "d"), seen)
	assert.False(t, ok)
}

func TestEnrichGateRejectsSeenTitle(t *testing.T) {
	seen := dedup.NewSeenSet()
	seen.Add("https://other", "Iran strikes base")

	e := &Enricher{Retry: fastRetry()}
	_, ok := e.Enrich(context.Background(), candidate("https://x/1", "Iran Strikes Base!", "d"), seen)
	assert.False(t, ok, "normalized title already seen")
}

func TestEnrichGateKeepsInternalSeparator(t *testing.T) {
	// A seen headline with an internal " - " must not shadow a different
	// headline sharing the same prefix.
	seen := dedup.NewSeenSet()
	seen.Add("https://other", "US - Iran talks resume")

	e := &Enricher{Retry: fastRetry()}
	a, ok := e.Enrich(context.Background(), candidate("https://x/1", "US - Mexico border deal", "d"), seen)
	require.True(t, ok)
	assert.Equal(t, "US - Mexico border deal", a.Title)
}

func TestEnrichFallbackOnExhaustedRetries(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("backend down")}
	e := &Enricher{Analyzer: analyzer, Retry: fastRetry()}

	desc := "Tehran announced new enrichment levels at the Natanz facility today. Officials said the decision follows months of stalled negotiations."
	a, ok := e.Enrich(context.Background(), candidate("https://x/2", "Iran boosts nuclear enrichment", desc), dedup.NewSeenSet())

	// Policy: the item is kept with a deterministic record, not dropped.
	require.True(t, ok)
	assert.Equal(t, 3, analyzer.calls, "retried up to the bound")
	assert.Equal(t, "Iran boosts nuclear enrichment", a.TitleFa, "raw title substitutes the translation")
	assert.Equal(t, gemini.DefaultUrgency, a.Urgency)
	assert.Equal(t, "nuclear", a.Tag)
	assert.NotEmpty(t, a.Summary)
}

func TestEnrichNoAnalyzerConfigured(t *testing.T) {
	e := &Enricher{Retry: fastRetry()}

	a, ok := e.Enrich(context.Background(), candidate("https://x/3", "Rial hits record low amid sanctions", "The currency slid again today against the dollar in open trading."), dedup.NewSeenSet())
	require.True(t, ok)
	assert.Equal(t, "economy", a.Tag)
	assert.Equal(t, gemini.DefaultUrgency, a.Urgency)
}

func TestEnrichClampsStubbedUrgency(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &gemini.Analysis{
		Title:   "تیتر",
		Summary: []string{"p"},
		Urgency: 42,
	}}
	e := &Enricher{Analyzer: analyzer, Retry: fastRetry()}

	a, ok := e.Enrich(context.Background(), candidate("https://x/4", "Headline", "d"), dedup.NewSeenSet())
	require.True(t, ok)
	assert.Equal(t, gemini.DefaultUrgency, a.Urgency)
}

func TestEnrichDefaultsTimestampAndSource(t *testing.T) {
	e := &Enricher{Retry: fastRetry()}

	cand := source.CandidateItem{Title: "Plain headline", URL: "https://x/5"}
	before := time.Now().Unix()
	a, ok := e.Enrich(context.Background(), cand, dedup.NewSeenSet())
	require.True(t, ok)

	assert.GreaterOrEqual(t, a.PublishedAt, before)
	assert.Equal(t, "News", a.Source)
}

func TestKeywordTag(t *testing.T) {
	assert.Equal(t, "nuclear", keywordTag("Iran nuclear enrichment grows"))
	assert.Equal(t, "military", keywordTag("Missile attack reported near base"))
	assert.Equal(t, "social", keywordTag("Protest over women's rights"))
	assert.Equal(t, "economy", keywordTag("New sanctions target oil exports"))
	assert.Equal(t, "politics", keywordTag("Cabinet reshuffle announced"))
}

func TestSnippetBullets(t *testing.T) {
	bullets := snippetBullets(
		"Tehran announced new measures on Monday morning. Officials framed the move as temporary relief. Markets reacted with a sharp decline in the afternoon. A fourth sentence should be ignored entirely here.",
		"fallback title",
	)
	assert.Len(t, bullets, 3)

	assert.Equal(t, []string{"fallback title"}, snippetBullets("", "fallback title"))

	// Markup in feed snippets is stripped before splitting.
	got := snippetBullets(`<a href="https://x">Officials announced new sanctions on oil exports today</a>`, "t")
	require.Len(t, got, 1)
	assert.NotContains(t, got[0], "<a")
}
