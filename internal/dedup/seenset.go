package dedup

import "sync"

// SeenSet indexes canonical URLs and normalized titles already known to the
// corpus. Titles are expected in their cleaned form, with the feed's source
// suffix already removed; stripping again here would eat a legitimate " - "
// inside the headline. It is the single piece of shared mutable state in the
// pipeline: concurrent enrichment workers read it through the gate check while
// the collector registers accepted items, so every access goes through the
// mutex.
type SeenSet struct {
	mu     sync.RWMutex
	urls   map[string]struct{}
	titles map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{
		urls:   make(map[string]struct{}),
		titles: make(map[string]struct{}),
	}
}

// Add registers a canonical URL and its cleaned headline (normalized
// internally).
func (s *SeenSet) Add(url, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url != "" {
		s.urls[url] = struct{}{}
	}
	if key := NormalizeTitle(title); key != "" {
		s.titles[key] = struct{}{}
	}
}

// AddURL registers a bare URL, used for pre-resolution links from the history log.
func (s *SeenSet) AddURL(url string) {
	if url == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[url] = struct{}{}
}

func (s *SeenSet) HasURL(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.urls[url]
	return ok
}

// HasTitle checks a cleaned headline by its normalized key.
func (s *SeenSet) HasTitle(title string) bool {
	key := NormalizeTitle(title)
	if key == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.titles[key]
	return ok
}

func (s *SeenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.urls)
}
