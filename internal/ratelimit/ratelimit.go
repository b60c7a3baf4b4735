package ratelimit

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// AnalysisLimiter caps the number of AI-analysis calls per day. A zero max
// means unlimited. Cache hits are recorded separately so the stats show how
// much budget the cache saved.
type AnalysisLimiter struct {
	mu        sync.Mutex
	count     int
	max       int
	cacheHits int
	resetTime time.Time
}

func NewAnalysisLimiter(max int) *AnalysisLimiter {
	return &AnalysisLimiter{
		max:       max,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// Allow reserves one analysis call, or reports the budget as exhausted.
func (l *AnalysisLimiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if l.max > 0 && l.count >= l.max {
		return fmt.Errorf("analysis budget exhausted (%d/%d)", l.count, l.max)
	}
	l.count++
	return nil
}

// RecordCacheHit notes that a cached analysis was served instead of a call.
func (l *AnalysisLimiter) RecordCacheHit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheHits++
}

func (l *AnalysisLimiter) Stats() (used, max, cacheHits int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, l.max, l.cacheHits
}

func (l *AnalysisLimiter) checkReset() {
	if time.Now().After(l.resetTime) {
		log.Printf("Resetting analysis budget (used %d, cache hits %d)", l.count, l.cacheHits)
		l.count = 0
		l.cacheHits = 0
		l.resetTime = time.Now().Add(24 * time.Hour)
	}
}
