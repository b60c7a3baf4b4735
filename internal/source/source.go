package source

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"newsradar/internal/dedup"
)

// CandidateItem is an article candidate as delivered by a feed. Title is the
// cleaned headline: the trailing " - Publisher" suffix is split off into
// Publisher during mapping and never reappears downstream. Ephemeral; only
// enriched articles are persisted.
type CandidateItem struct {
	Title       string
	URL         string
	Publisher   string
	Description string
	Published   string
	PublishedAt time.Time
	Image       string
}

// Sources is the YAML config structure:
//
//	query: Iran AND (Israel OR USA OR nuclear)
//	language: en
//	country: US
//	feeds:
//	  - https://...
type Sources struct {
	Query    string   `yaml:"query"`
	Language string   `yaml:"language"`
	Country  string   `yaml:"country"`
	Feeds    []string `yaml:"feeds"`
}

// LoadSources reads the source list from a YAML file.
func LoadSources(path string) (*Sources, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Sources
	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return nil, err
	}
	if s.Language == "" {
		s.Language = "en"
	}
	if s.Country == "" {
		s.Country = "US"
	}
	return &s, nil
}

// FeedURLs returns every feed to fetch: the Google News search feed built from
// the query, plus any literal feed URLs.
func (s *Sources) FeedURLs() []string {
	var urls []string
	if s.Query != "" {
		q := url.Values{}
		q.Set("q", s.Query)
		q.Set("hl", s.Language)
		q.Set("gl", s.Country)
		q.Set("ceid", s.Country+":"+s.Language)
		urls = append(urls, "https://news.google.com/rss/search?"+q.Encode())
	}
	urls = append(urls, s.Feeds...)
	return urls
}

// Searcher fetches candidate items from the configured feeds.
type Searcher struct {
	parser     *gofeed.Parser
	maxResults int
	maxAge     time.Duration
}

func NewSearcher(maxResults int, maxAge time.Duration) *Searcher {
	return &Searcher{
		parser:     gofeed.NewParser(),
		maxResults: maxResults,
		maxAge:     maxAge,
	}
}

// Fetch downloads and parses all feeds. Per-feed errors are logged and
// skipped; an error is returned only when nothing at all could be fetched,
// which is the one run-fatal condition of the pipeline.
func (s *Searcher) Fetch(ctx context.Context, src *Sources) ([]CandidateItem, error) {
	urls := src.FeedURLs()
	if len(urls) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	var items []CandidateItem
	successCount := 0

	for _, feedURL := range urls {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("Error parsing feed %s: %v", feedURL, err)
			continue
		}
		successCount++

		for _, item := range feed.Items {
			cand := mapItem(item)
			if s.maxAge > 0 && !cand.PublishedAt.IsZero() && time.Since(cand.PublishedAt) > s.maxAge {
				continue
			}
			items = append(items, cand)
			if s.maxResults > 0 && len(items) >= s.maxResults {
				break
			}
		}
		log.Printf("Loaded %d items from %s", len(feed.Items), feedURL)

		if s.maxResults > 0 && len(items) >= s.maxResults {
			break
		}
	}

	log.Printf("Processed feeds: %d/%d ok, %d candidates", successCount, len(urls), len(items))

	if successCount == 0 && len(items) == 0 {
		return nil, fmt.Errorf("all %d feeds failed", len(urls))
	}
	return items, nil
}

func mapItem(item *gofeed.Item) CandidateItem {
	cand := CandidateItem{
		Title:       item.Title,
		URL:         item.Link,
		Description: item.Description,
		Published:   item.Published,
	}

	if item.PublishedParsed != nil {
		cand.PublishedAt = *item.PublishedParsed
	} else if item.Published != "" {
		// gofeed could not parse the date; dateparse handles the loose
		// formats some publishers emit.
		if t, err := dateparse.ParseAny(item.Published); err == nil {
			cand.PublishedAt = t
		}
	}

	// Google News puts the publisher in the title suffix ("… - CNN"); plain
	// feeds sometimes carry an author, otherwise fall back to the link host.
	// This is the one place the suffix comes off the title: stripping it
	// anywhere else as well would truncate headlines with an internal " - ".
	if idx := strings.LastIndex(item.Title, " - "); idx > 0 {
		cand.Publisher = strings.TrimSpace(item.Title[idx+3:])
		cand.Title = dedup.StripSourceSuffix(item.Title)
	}
	if cand.Publisher == "" && len(item.Authors) > 0 && item.Authors[0] != nil {
		cand.Publisher = item.Authors[0].Name
	}
	if cand.Publisher == "" {
		if u, err := url.Parse(item.Link); err == nil && u.Host != "" {
			cand.Publisher = strings.TrimPrefix(u.Host, "www.")
		}
	}

	if item.Image != nil {
		cand.Image = item.Image.URL
	}
	if cand.Image == "" {
		for _, enc := range item.Enclosures {
			if enc != nil && enc.URL != "" {
				cand.Image = enc.URL
				break
			}
		}
	}
	return cand
}
