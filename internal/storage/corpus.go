package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"newsradar/internal/news"
)

// CorpusStore persists the capped, time-ordered article list as a single JSON
// array rewritten whole each run. Single-writer: no two pipeline runs may
// share a corpus file.
type CorpusStore struct {
	path string
	cap  int
}

func NewCorpusStore(path string, cap int) *CorpusStore {
	return &CorpusStore{path: path, cap: cap}
}

// Load reads the persisted corpus. A missing or corrupt file yields an empty
// corpus: starting fresh beats aborting the run.
func (s *CorpusStore) Load() []news.Article {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Corpus file unreadable, starting fresh: %v", err)
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var articles []news.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		log.Printf("Corpus file corrupt, starting fresh: %v", err)
		return nil
	}
	return articles
}

// Reconcile restores the corpus invariants: unique canonical URLs (first
// occurrence wins), descending timestamp order, length capped.
func (s *CorpusStore) Reconcile(articles []news.Article) []news.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if _, dup := seen[a.CanonicalURL]; dup {
			continue
		}
		seen[a.CanonicalURL] = struct{}{}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt > out[j].PublishedAt
	})

	if s.cap >= 0 && len(out) > s.cap {
		out = out[:s.cap]
	}
	return out
}

// Merge folds newly accepted articles into the on-disk corpus and writes the
// result. The disk state is re-read here rather than trusting the snapshot
// loaded at run start, so an external write between load and save is not
// silently lost. Merging the same batch twice is a no-op.
func (s *CorpusStore) Merge(newly []news.Article) ([]news.Article, error) {
	existing := s.Load()

	onDisk := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		onDisk[a.CanonicalURL] = struct{}{}
	}

	merged := existing
	for _, a := range newly {
		if _, dup := onDisk[a.CanonicalURL]; dup {
			continue
		}
		onDisk[a.CanonicalURL] = struct{}{}
		merged = append(merged, a)
	}

	final := s.Reconcile(merged)
	if err := s.Save(final); err != nil {
		return nil, err
	}
	return final, nil
}

// Save writes the corpus atomically: temp file in the same directory, then
// rename over the target.
func (s *CorpusStore) Save(articles []news.Article) error {
	if articles == nil {
		articles = []news.Article{}
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal corpus: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace corpus file: %w", err)
	}
	return nil
}
