package storage

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// HistoryLog is the append-only flat list of URLs ever accepted, one per
// line. It is the cheap path for seeding the seen set at process start:
// membership here equals "already known", including pre-resolution URLs the
// capped corpus no longer holds.
type HistoryLog struct {
	path string
}

func NewHistoryLog(path string) *HistoryLog {
	return &HistoryLog{path: path}
}

// Load reads all logged URLs. Missing file means empty history.
func (h *HistoryLog) Load() map[string]struct{} {
	urls := make(map[string]struct{})

	data, err := os.ReadFile(h.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("History log unreadable, ignoring: %v", err)
		}
		return urls
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls[line] = struct{}{}
		}
	}
	return urls
}

// Append adds URLs to the log. Append-only, never rewritten.
func (h *HistoryLog) Append(urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			b.WriteString(u)
			b.WriteByte('\n')
		}
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append to history log: %w", err)
	}
	return nil
}
