// Package cache holds analysis results in memory for the lifetime of a run,
// so repeated headlines (cross-posted stories, re-runs in the same process)
// do not burn analysis-call budget.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"newsradar/internal/gemini"
)

type entry struct {
	analysis  *gemini.Analysis
	expiresAt time.Time
}

type Cache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		items: make(map[string]entry),
	}
}

// Key derives a stable cache key from the headline and body text.
func Key(title, body string) string {
	h := sha256.New()
	h.Write([]byte(title + "|" + body))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (c *Cache) Get(key string) (*gemini.Analysis, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.analysis, true
}

func (c *Cache) Set(key string, a *gemini.Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{analysis: a, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
