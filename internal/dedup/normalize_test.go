package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "iran nuclear talks resume", NormalizeTitle("Iran: Nuclear Talks Resume!"))
	assert.Equal(t, "u s sanctions hit", NormalizeTitle("  U.S. — Sanctions hit  "))
	assert.Equal(t, "", NormalizeTitle("??!"))
	assert.Equal(t, "", NormalizeTitle(""))
}

func TestStripSourceSuffix(t *testing.T) {
	assert.Equal(t, "Iran strikes back", StripSourceSuffix("Iran strikes back - CNN"))

	// Rightmost split only: hyphenated phrases inside the headline survive.
	assert.Equal(t, "US - Iran tensions rise", StripSourceSuffix("US - Iran tensions rise - Reuters"))

	// No separator, nothing to strip.
	assert.Equal(t, "Iran strikes back", StripSourceSuffix("Iran strikes back"))

	// A plain hyphen without spaces is not a separator.
	assert.Equal(t, "Sanctions-hit economy shrinks", StripSourceSuffix("Sanctions-hit economy shrinks"))
}

func TestTokens(t *testing.T) {
	toks := Tokens("Iran and the USA resume nuclear talks")

	for _, want := range []string{"iran", "usa", "resume", "nuclear", "talks"} {
		_, ok := toks[want]
		assert.True(t, ok, "expected token %q", want)
	}

	// Stop words must be gone.
	for _, gone := range []string{"and", "the"} {
		_, ok := toks[gone]
		assert.False(t, ok, "unexpected token %q", gone)
	}
}

func TestTokensStopWordsOnly(t *testing.T) {
	assert.Empty(t, Tokens("The Latest News Update"))
	assert.Empty(t, Tokens(""))
}

func TestTokensKeepsInternalSeparator(t *testing.T) {
	// Cleaned headlines may legitimately contain " - "; Tokens must not treat
	// it as a source suffix and drop the tail.
	toks := Tokens("US - Iran talks resume")

	for _, want := range []string{"us", "iran", "talks", "resume"} {
		_, ok := toks[want]
		assert.True(t, ok, "expected token %q", want)
	}
}
