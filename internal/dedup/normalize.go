package dedup

import (
	"strings"
	"unicode"
)

// NormalizeTitle reduces a headline to a comparable key: lowercase, word
// characters only, single-space separated.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)

	b := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b = append(b, r)
		} else {
			b = append(b, ' ')
		}
	}
	return strings.Join(strings.Fields(string(b)), " ")
}

// StripSourceSuffix removes a trailing " - PublisherName" that many feeds
// append to headlines. The split is on the last occurrence so hyphens inside
// the headline survive. Applied exactly once, when a candidate is mapped from
// its feed item; everything downstream works with the cleaned title.
func StripSourceSuffix(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return title[:idx]
	}
	return title
}

// stopWords are dropped before similarity scoring: articles, prepositions and
// words so generic in news headlines they carry no signal.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "with": true,
	"by": true, "from": true, "as": true, "is": true, "are": true, "was": true,
	"be": true, "has": true, "have": true, "will": true, "its": true, "it": true,
	"after": true, "over": true, "amid": true, "into": true, "about": true,
	"news": true, "report": true, "reports": true, "update": true, "updates": true,
	"says": true, "say": true, "said": true, "breaking": true, "live": true,
	"latest": true,
}

// Tokens builds the stop-word-filtered token set of a cleaned headline.
// Suffix stripping happens once at the feed boundary, never here: stripping a
// second time would truncate headlines with a legitimate internal " - ".
func Tokens(title string) map[string]struct{} {
	norm := NormalizeTitle(title)

	set := make(map[string]struct{})
	for _, w := range strings.Fields(norm) {
		if stopWords[w] {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
