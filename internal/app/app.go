package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"newsradar/internal/cache"
	"newsradar/internal/config"
	"newsradar/internal/dedup"
	"newsradar/internal/digest"
	"newsradar/internal/extract"
	"newsradar/internal/gemini"
	"newsradar/internal/metrics"
	"newsradar/internal/news"
	"newsradar/internal/ratelimit"
	"newsradar/internal/retry"
	"newsradar/internal/source"
	"newsradar/internal/storage"
	"newsradar/internal/telegram"
)

// Run executes one full pipeline pass: fetch, dedupe, enrich, persist, send.
// Only a total candidate-fetch failure is fatal; every other error degrades
// to a documented fallback.
func Run(ctx context.Context, cfg *config.Config) (err error) {
	startTime := time.Now()
	defer func() {
		if err == nil {
			metrics.Global.RecordRun(time.Since(startTime))
		}
	}()

	corpusStore := storage.NewCorpusStore(cfg.CorpusPath, cfg.CorpusCap)
	historyLog := storage.NewHistoryLog(cfg.HistoryPath)

	corpus := corpusStore.Load()
	log.Printf("Loaded corpus: %d articles", len(corpus))

	// Seed the seen set from the corpus and the history log. The log also
	// holds pre-resolution URLs the capped corpus has already rotated out.
	seen := dedup.NewSeenSet()
	historyTitles := make([]string, 0, len(corpus))
	for _, a := range corpus {
		seen.Add(a.CanonicalURL, a.Title)
		historyTitles = append(historyTitles, a.Title)
	}
	for url := range historyLog.Load() {
		seen.AddURL(url)
	}

	// Fetch candidates. This is the one run-fatal step: with nothing to
	// process there is nothing to write or send, so exit without touching
	// the corpus.
	sources, err := source.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("failed to load sources config: %w", err)
	}

	searcher := source.NewSearcher(cfg.MaxResults, cfg.CandidateMaxAge)
	candidates, err := searcher.Fetch(ctx, sources)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("failed to fetch candidates: %w", err)
	}

	batch := filterBatch(cfg, candidates, seen, historyTitles)
	log.Printf("Batch after dedup: %d of %d candidates", len(batch), len(candidates))
	if len(batch) == 0 {
		log.Println("No new candidates after dedup, nothing to do")
		return nil
	}

	limiter := ratelimit.NewAnalysisLimiter(cfg.AnalysisBudget)
	accepted, historyURLs := enrichBatch(ctx, cfg, batch, seen, limiter)
	if len(accepted) == 0 {
		log.Println("No articles accepted after enrichment")
		return nil
	}
	log.Printf("Accepted %d new articles", len(accepted))

	// Persist before delivery: a Telegram outage must not lose the run's work.
	final, err := corpusStore.Merge(accepted)
	if err != nil {
		log.Printf("Corpus merge failed: %v", err)
		metrics.Global.SetError(err.Error())
	} else {
		log.Printf("Corpus now holds %d articles", len(final))
	}

	if err := historyLog.Append(historyURLs); err != nil {
		log.Printf("History append failed: %v", err)
	}

	composer := digest.NewComposer(cfg.MessageLimit)
	chunks := composer.Compose(accepted)

	tg := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, cfg.RequestTimeout)
	sent := tg.SendDigest(chunks, cfg.SendDelay)
	log.Printf("Digest delivered: %d/%d chunks", sent, len(chunks))

	used, max, hits := limiter.Stats()
	if max > 0 || used > 0 || hits > 0 {
		log.Printf("Analysis usage: %d/%d calls, %d cache hits", used, max, hits)
	}
	return nil
}

// filterBatch applies the candidate-level dedup passes: exact seen checks
// against history, then fuzzy checks against history titles and the growing
// batch itself.
func filterBatch(cfg *config.Config, candidates []source.CandidateItem, seen *dedup.SeenSet, historyTitles []string) []source.CandidateItem {
	judge := dedup.Judge{
		SimilarityThreshold: cfg.SimilarityThreshold,
		OverlapThreshold:    cfg.OverlapThreshold,
	}

	fresh := make([]source.CandidateItem, 0, len(candidates))
	for _, cand := range candidates {
		metrics.Global.IncrementCandidates()
		if seen.HasURL(cand.URL) || seen.HasTitle(cand.Title) {
			metrics.Global.IncrementDuplicates()
			continue
		}
		fresh = append(fresh, cand)
	}

	titles := make([]string, len(fresh))
	for i, cand := range fresh {
		titles[i] = cand.Title
	}

	surviving := judge.FilterBatch(titles, historyTitles)
	batch := make([]source.CandidateItem, 0, len(surviving))
	for _, idx := range surviving {
		batch = append(batch, fresh[idx])
	}
	metrics.Global.AddDuplicates(int64(len(fresh) - len(surviving)))
	return batch
}

func enrichBatch(ctx context.Context, cfg *config.Config, batch []source.CandidateItem, seen *dedup.SeenSet, limiter *ratelimit.AnalysisLimiter) ([]news.Article, []string) {
	var analyzer news.Analyzer
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("Gemini client unavailable, using fallback records: %v", err)
		} else {
			defer client.Close()
			analyzer = client
		}
	} else {
		log.Println("GEMINI_API_KEY not set, every item gets a fallback record")
	}

	enricher := &news.Enricher{
		Resolver:  extract.NewResolver(cfg.ResolveTimeout),
		Extractor: extract.NewExtractor(cfg.RequestTimeout),
		Analyzer:  analyzer,
		Cache:     cache.New(time.Duration(cfg.CacheTTLHours) * time.Hour),
		Limiter:   limiter,
		Retry: retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
		},
	}

	pool := &news.Pool{Enricher: enricher, Workers: cfg.WorkerCount}
	return pool.Run(ctx, batch, seen)
}
