package source

import (
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapItemSplitsPublisherSuffix(t *testing.T) {
	cand := mapItem(&gofeed.Item{
		Title: "Iran nuclear talks resume - CNN",
		Link:  "https://news.example.com/article",
	})

	assert.Equal(t, "Iran nuclear talks resume", cand.Title)
	assert.Equal(t, "CNN", cand.Publisher)
}

func TestMapItemSplitsOnRightmostSeparator(t *testing.T) {
	// Internal " - " stays in the cleaned title; only the trailing publisher
	// comes off.
	cand := mapItem(&gofeed.Item{
		Title: "US - Iran talks resume - Reuters",
		Link:  "https://news.example.com/article",
	})

	assert.Equal(t, "US - Iran talks resume", cand.Title)
	assert.Equal(t, "Reuters", cand.Publisher)
}

func TestMapItemNoSuffix(t *testing.T) {
	cand := mapItem(&gofeed.Item{
		Title: "Sanctions-hit economy shrinks",
		Link:  "https://www.example.com/article",
	})

	assert.Equal(t, "Sanctions-hit economy shrinks", cand.Title)
	assert.Equal(t, "example.com", cand.Publisher, "falls back to link host")
}

func TestMapItemPublisherFromAuthor(t *testing.T) {
	cand := mapItem(&gofeed.Item{
		Title:   "Plain headline",
		Link:    "https://www.example.com/article",
		Authors: []*gofeed.Person{{Name: "Example Desk"}},
	})

	assert.Equal(t, "Example Desk", cand.Publisher)
}

func TestMapItemDateFallback(t *testing.T) {
	parsed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cand := mapItem(&gofeed.Item{
		Title:           "Headline",
		Link:            "https://example.com/a",
		PublishedParsed: &parsed,
	})
	assert.Equal(t, parsed, cand.PublishedAt)

	// gofeed could not parse; dateparse picks up the loose format.
	cand = mapItem(&gofeed.Item{
		Title:     "Headline",
		Link:      "https://example.com/b",
		Published: "2026-08-30 12:00:00",
	})
	require.False(t, cand.PublishedAt.IsZero())
	assert.Equal(t, 2026, cand.PublishedAt.Year())
}
