package extract

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const userAgent = "newsradar/1.0 (news monitor)"

// MinContentLength is the threshold below which extracted text is treated as
// useless (paywall stubs, JS-rendered shells) and the caller falls back to the
// feed snippet.
const MinContentLength = 100

// Resolver follows redirect/indirection URLs (Google News links wrap the real
// article URL) to their canonical destination.
type Resolver struct {
	client *http.Client
}

func NewResolver(timeout time.Duration) *Resolver {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Resolve returns the canonical URL behind rawURL. Any failure returns the
// input unchanged: an unresolvable link must never sink the item on its own.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return rawURL
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("URL resolution failed for %s: %v", rawURL, err)
		return rawURL
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return rawURL
}

// Extractor fetches a page and pulls out its body text.
type Extractor struct {
	client *http.Client
}

func NewExtractor(timeout time.Duration) *Extractor {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Text returns the plain body text of the article at articleURL. Readability
// is tried first; when it yields nothing usable a goquery paragraph walk is
// attempted. Short results are returned as errors so the caller degrades to
// the feed snippet.
func (e *Extractor) Text(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	parsedURL, _ := url.Parse(articleURL)
	if article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL); err == nil {
		if text := cleanText(article.TextContent); len(text) > MinContentLength {
			return text, nil
		}
	}

	text, err := paragraphFallback(strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	if len(text) <= MinContentLength {
		return "", fmt.Errorf("content too short (%d chars)", len(text))
	}
	return text, nil
}

// paragraphFallback walks common article selectors and joins paragraph text,
// for pages readability cannot make sense of.
func paragraphFallback(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	selectors := []string{
		"article p",
		".article-body p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"p",
	}

	var best []string
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 && !isJunkLine(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			best = paragraphs
			break
		}
		if len(paragraphs) > len(best) {
			best = paragraphs
		}
	}

	return cleanText(strings.Join(best, "\n\n")), nil
}

func isJunkLine(line string) bool {
	lower := strings.ToLower(line)
	for _, indicator := range []string{
		"cookie", "subscribe", "newsletter", "sign up", "advertisement",
		"read more", "follow us", "privacy policy", "all rights reserved",
	} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
