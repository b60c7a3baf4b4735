package dedup

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenSetAddAndLookup(t *testing.T) {
	s := NewSeenSet()

	s.Add("https://example.com/a", "Iran nuclear talks resume")

	assert.True(t, s.HasURL("https://example.com/a"))
	assert.False(t, s.HasURL("https://example.com/b"))

	// Title lookups go through normalization, so punctuation and case do
	// not matter.
	assert.True(t, s.HasTitle("Iran Nuclear Talks Resume!"))
	assert.False(t, s.HasTitle("Oil exports climb"))
}

func TestSeenSetKeepsInternalSeparator(t *testing.T) {
	// Titles arrive already cleaned; the set must key on the whole headline
	// and never re-split on " - ". Two unrelated headlines sharing a prefix
	// before an internal separator must not collide.
	s := NewSeenSet()

	s.Add("https://example.com/a", "US - Iran talks resume")

	assert.True(t, s.HasTitle("US - Iran talks resume"))
	assert.False(t, s.HasTitle("US - Mexico border deal"))
	assert.False(t, s.HasTitle("US"))
}

func TestSeenSetEmptyKeysIgnored(t *testing.T) {
	s := NewSeenSet()

	s.Add("", "???")
	s.AddURL("")

	assert.Zero(t, s.Len())
	assert.False(t, s.HasTitle("???"))
}

func TestSeenSetConcurrentAccess(t *testing.T) {
	s := NewSeenSet()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				url := fmt.Sprintf("https://example.com/%d/%d", n, j)
				s.Add(url, fmt.Sprintf("title %d %d", n, j))
				s.HasURL(url)
				s.HasTitle("title 0 0")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1600, s.Len())
}
