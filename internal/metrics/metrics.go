package metrics

import (
	"sync"
	"time"
)

// Metrics collects per-run pipeline counters. Safe for concurrent use.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	CandidatesSeen     int64
	DuplicatesFiltered int64
	ArticlesEnriched   int64
	AnalysisFailures   int64
	FallbacksUsed      int64
	ChunksSent         int64
	SendFailures       int64

	// Timings
	LastRunDuration time.Duration
	TotalRunTime    time.Duration
	RunCount        int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementCandidates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesSeen++
}

func (m *Metrics) IncrementDuplicates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) AddDuplicates(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += n
}

func (m *Metrics) IncrementEnriched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesEnriched++
}

func (m *Metrics) IncrementAnalysisFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalysisFailures++
}

func (m *Metrics) IncrementFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbacksUsed++
}

func (m *Metrics) IncrementChunksSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChunksSent++
}

func (m *Metrics) IncrementSendFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendFailures++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunTime += duration
	m.RunCount++
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"candidates_seen":      m.CandidatesSeen,
		"duplicates_filtered":  m.DuplicatesFiltered,
		"articles_enriched":    m.ArticlesEnriched,
		"analysis_failures":    m.AnalysisFailures,
		"fallbacks_used":       m.FallbacksUsed,
		"chunks_sent":          m.ChunksSent,
		"send_failures":        m.SendFailures,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"run_count":            m.RunCount,
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
