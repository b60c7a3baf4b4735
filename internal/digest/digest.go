package digest

import (
	"fmt"
	"html"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"newsradar/internal/news"
)

// Per-field ceilings keep a rendered block bounded no matter what the feed or
// the model hands back.
const (
	maxTitleRunes   = 200
	maxSourceRunes  = 80
	maxBulletRunes  = 300
	maxImpactRunes  = 300
	maxBulletsShown = 3
)

// Composer formats a run's newly accepted articles into Telegram-ready HTML
// messages, none exceeding Limit bytes. Telegram allows 4096; the default
// limit leaves a safety margin.
type Composer struct {
	Limit int
	Now   func() time.Time // injectable for tests
}

func NewComposer(limit int) *Composer {
	if limit <= 0 {
		limit = 3900
	}
	return &Composer{Limit: limit, Now: time.Now}
}

// Order sorts for presentation: most urgent first, ties broken by recency.
// Independent of the corpus's own timestamp-only ordering.
func Order(articles []news.Article) []news.Article {
	out := make([]news.Article, len(articles))
	copy(out, articles)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Urgency != out[j].Urgency {
			return out[i].Urgency > out[j].Urgency
		}
		return out[i].PublishedAt > out[j].PublishedAt
	})
	return out
}

// Compose renders the ordered articles into one or more messages using a
// greedy pass: when the next block would overflow the budget, the current
// message is closed and a new one starts. Earlier messages are never
// repacked, so the last one may run short; that is accepted.
func (c *Composer) Compose(articles []news.Article) []string {
	if len(articles) == 0 {
		return nil
	}

	ordered := Order(articles)
	header := c.header(len(ordered))
	footer := c.footer()

	var messages []string
	buf := strings.Builder{}
	buf.WriteString(header)

	maxBlock := c.Limit - len(header) - len(footer)
	for _, a := range ordered {
		block := renderItem(a)
		if maxBlock > 0 && len(block) > maxBlock {
			// Field ceilings make this rare, but a pathological URL can still
			// blow past the budget. Cutting markup beats an undeliverable
			// oversized message.
			log.Printf("Digest block too large (%d bytes), truncating: %s", len(block), a.Title)
			block = truncateBytes(block, maxBlock)
		}

		if buf.Len() > len(header) && buf.Len()+len(block)+len(footer) > c.Limit {
			buf.WriteString(footer)
			messages = append(messages, buf.String())
			buf.Reset()
			buf.WriteString(header)
		}
		buf.WriteString(block)
	}

	if buf.Len() > len(header) {
		buf.WriteString(footer)
		messages = append(messages, buf.String())
	}
	return messages
}

func (c *Composer) header(count int) string {
	now := c.Now().UTC()
	var b strings.Builder
	b.WriteString("🛰 <b>Iran News Radar</b>\n")
	b.WriteString(fmt.Sprintf("📡 %d new report(s) | %s\n", count, now.Format("2006-01-02 15:04 UTC")))
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	return b.String()
}

func (c *Composer) footer() string {
	return "━━━━━━━━━━━━━━━━━━━━━━━━━━\n📱 Iran News Radar | automated digest"
}

// renderItem formats one article block. Every user-supplied string is
// HTML-escaped: titles and summaries come from feeds and model output and
// must not be able to break the message markup. Fields are clipped to their
// ceilings before escaping so one runaway summary cannot eat the whole budget.
func renderItem(a news.Article) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s <a href=\"%s\">%s</a>\n",
		urgencyIcon(a.Urgency), html.EscapeString(a.CanonicalURL), html.EscapeString(clip(a.Title, maxTitleRunes))))

	if a.TitleFa != "" && a.TitleFa != a.Title {
		b.WriteString(fmt.Sprintf("🇮🇷 <i>%s</i>\n", html.EscapeString(clip(a.TitleFa, maxTitleRunes))))
	}

	if a.Source != "" {
		b.WriteString(fmt.Sprintf("📰 %s\n", html.EscapeString(clip(a.Source, maxSourceRunes))))
	}

	for i, point := range a.Summary {
		if i == maxBulletsShown {
			break
		}
		b.WriteString(fmt.Sprintf("• %s\n", html.EscapeString(clip(point, maxBulletRunes))))
	}

	if a.Impact != "" {
		b.WriteString(fmt.Sprintf("💥 %s\n", html.EscapeString(clip(a.Impact, maxImpactRunes))))
	}

	if a.Tag != "" {
		b.WriteString(fmt.Sprintf("#%s\n", html.EscapeString(sanitizeTag(a.Tag))))
	}

	b.WriteString("\n")
	return b.String()
}

// urgencyIcon maps urgency to a leading icon by threshold.
func urgencyIcon(urgency int) string {
	switch {
	case urgency >= 8:
		return "🚨"
	case urgency >= 6:
		return "⚠️"
	default:
		return "📰"
	}
}

// clip bounds s to max runes, marking the cut with an ellipsis.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// truncateBytes cuts s to at most max bytes on a rune boundary.
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// sanitizeTag keeps the hashtag usable: word characters only.
func sanitizeTag(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "news"
	}
	return b.String()
}
