package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testJudge = Judge{SimilarityThreshold: 0.35, OverlapThreshold: 4}

func set(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard(set("a", "b"), set("a", "b")), 1e-9)
	assert.InDelta(t, 0.5, Jaccard(set("a", "b", "c"), set("a", "b", "d")), 1e-9)
	assert.Zero(t, Jaccard(set(), set("a")))
	assert.Zero(t, Jaccard(set("a"), set()))
	assert.Zero(t, Jaccard(set("a"), set("b")))
}

func TestIsDuplicateSymmetric(t *testing.T) {
	a := "Iran resumes uranium enrichment at Natanz facility"
	b := "Uranium enrichment resumed at Natanz, Iran announces"

	assert.True(t, testJudge.IsDuplicate(a, []string{b}))
	assert.True(t, testJudge.IsDuplicate(b, []string{a}))
}

func TestIsDuplicateEmptyTokensNeverDuplicate(t *testing.T) {
	pool := []string{"Iran nuclear deal collapses", "The latest news"}

	assert.False(t, testJudge.IsDuplicate("", pool))
	assert.False(t, testJudge.IsDuplicate("The Latest Update", pool))
	assert.False(t, testJudge.IsDuplicate("...", pool))
}

func TestIsDuplicateStopWordsOnlyNeverCollide(t *testing.T) {
	// Two titles sharing only stop words have empty token sets after
	// filtering and must not be flagged.
	assert.False(t, testJudge.IsDuplicate("The News Report", []string{"A News Update"}))
}

func TestIsDuplicateThresholdIsStrict(t *testing.T) {
	// Token sets sized 1/1 overlap 1: ratio exactly 1.0 > 0.35 → dup.
	assert.True(t, testJudge.IsDuplicate("Natanz", []string{"Natanz"}))

	// One shared token out of an eight-token union: ratio 0.125 and
	// overlap 1, below both thresholds.
	assert.False(t, testJudge.IsDuplicate(
		"Natanz centrifuges spinning again",
		[]string{"Natanz hosts inspectors today visit"},
	))
}

func TestIsDuplicateAbsoluteOverlapClause(t *testing.T) {
	// Long wordy headlines: ratio diluted below the threshold but the
	// overlapping core claim (4+ tokens) is identical.
	title := "Iran uranium enrichment Natanz centrifuges alpha beta gamma delta epsilon zeta"
	other := "Iran uranium enrichment Natanz facility one two three four five six seven"

	toks, otherToks := Tokens(title), Tokens(other)
	inter := intersection(toks, otherToks)
	assert.GreaterOrEqual(t, inter, 4)
	assert.LessOrEqual(t, Jaccard(toks, otherToks), 0.35)

	assert.True(t, testJudge.IsDuplicate(title, []string{other}))
}

func TestFilterBatchCollapsesInternalDuplicates(t *testing.T) {
	// Items 1 and 2 share five non-stop-word tokens; item 3 is unrelated.
	titles := []string{
		"Iran uranium enrichment accelerates at Natanz facility",
		"Natanz facility uranium enrichment accelerates, Iran says",
		"Oil exports climb despite sanctions pressure",
	}

	surviving := testJudge.FilterBatch(titles, nil)
	assert.Equal(t, []int{0, 2}, surviving, "first of the duplicate pair wins")
}

func TestFilterBatchAgainstHistory(t *testing.T) {
	history := []string{"Iran uranium enrichment accelerates at Natanz facility"}
	titles := []string{
		"Uranium enrichment at Natanz accelerates, Iran confirms",
		"Currency hits record low against dollar",
	}

	surviving := testJudge.FilterBatch(titles, history)
	assert.Equal(t, []int{1}, surviving)
}

func TestFilterBatchUsesLivePool(t *testing.T) {
	// Three near-identical titles from different sources: only the first
	// survives, proving the batch pool grows as items are accepted.
	titles := []string{
		"Iran missile strike hits base in retaliation raid",
		"Missile strike by Iran hits base, retaliation confirmed",
		"Retaliation raid: Iran missile strike hits base",
	}

	surviving := testJudge.FilterBatch(titles, nil)
	assert.Equal(t, []int{0}, surviving)
}
