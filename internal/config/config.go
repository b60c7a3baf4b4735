package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Telegram settings
	TelegramToken  string
	TelegramChatID string

	// Gemini settings
	GeminiAPIKey   string // empty = analysis skipped, fallback records used
	AnalysisBudget int    // max analysis calls per day (0 = unlimited)
	CacheTTLHours  int

	// Source settings
	SourcesConfigPath string
	MaxResults        int
	CandidateMaxAge   time.Duration

	// Dedup settings
	SimilarityThreshold float64 // Jaccard ratio above which titles are duplicates
	OverlapThreshold    int     // absolute token overlap that also flags a duplicate

	// Enrichment settings
	WorkerCount    int
	RetryAttempts  int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
	ResolveTimeout time.Duration

	// Persistence settings
	CorpusPath  string
	HistoryPath string
	CorpusCap   int

	// Digest settings
	MessageLimit int // hard per-message byte budget, below Telegram's 4096
	SendDelay    time.Duration

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SourcesConfigPath:   "configs/sources.yaml",
		MaxResults:          20,
		CandidateMaxAge:     24 * time.Hour,
		SimilarityThreshold: 0.35,
		OverlapThreshold:    4,
		WorkerCount:         4,
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
		RequestTimeout:      30 * time.Second,
		ResolveTimeout:      10 * time.Second,
		CorpusPath:          "news.json",
		HistoryPath:         "seen_news.txt",
		CorpusCap:           60,
		MessageLimit:        3900,
		SendDelay:           2 * time.Second,
		CacheTTLHours:       48,
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.CorpusPath = getEnvOrDefault("CORPUS_PATH", cfg.CorpusPath)
	cfg.HistoryPath = getEnvOrDefault("HISTORY_PATH", cfg.HistoryPath)

	cfg.MaxResults = getEnvIntOrDefault("MAX_RESULTS", cfg.MaxResults)
	cfg.CorpusCap = getEnvIntOrDefault("CORPUS_CAP", cfg.CorpusCap)
	cfg.WorkerCount = getEnvIntOrDefault("WORKER_COUNT", cfg.WorkerCount)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.OverlapThreshold = getEnvIntOrDefault("OVERLAP_THRESHOLD", cfg.OverlapThreshold)
	cfg.MessageLimit = getEnvIntOrDefault("MESSAGE_LIMIT", cfg.MessageLimit)
	cfg.AnalysisBudget = getEnvIntOrDefault("ANALYSIS_BUDGET", cfg.AnalysisBudget)
	cfg.CacheTTLHours = getEnvIntOrDefault("CACHE_TTL_HOURS", cfg.CacheTTLHours)

	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 && val < 1 {
			cfg.SimilarityThreshold = val
		}
	}
	if v := os.Getenv("CANDIDATE_MAX_AGE_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.CandidateMaxAge = time.Duration(val) * time.Hour
		}
	}
	if v := os.Getenv("SEND_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.SendDelay = time.Duration(val) * time.Millisecond
		}
	}
	if v := os.Getenv("RETRY_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryDelay = time.Duration(val) * time.Millisecond
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if c.CorpusCap < 0 {
		return fmt.Errorf("CORPUS_CAP must not be negative")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	// GEMINI_API_KEY is deliberately optional: without it every item takes
	// the deterministic fallback path and the run still completes.
	return nil
}
