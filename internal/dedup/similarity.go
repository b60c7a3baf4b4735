package dedup

// Judge decides whether two headlines describe the same story. Thresholds are
// empirical and configurable; see config.Config.
type Judge struct {
	SimilarityThreshold float64 // Jaccard ratio, strict greater-than
	OverlapThreshold    int     // absolute intersection size, greater-or-equal
}

// Jaccard returns |a∩b| / |a∪b|. Zero when either set is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := intersection(a, b)
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func intersection(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// IsDuplicate reports whether title is a near-duplicate of any entry in pool.
// A headline with no significant tokens is never a duplicate: an empty or
// stop-word-only title must not collapse unrelated items. The absolute overlap
// clause catches long headlines where the ratio is diluted but the overlapping
// core claim is identical. First match short-circuits.
func (j Judge) IsDuplicate(title string, pool []string) bool {
	toks := Tokens(title)
	if len(toks) == 0 {
		return false
	}

	for _, other := range pool {
		otherToks := Tokens(other)
		if len(otherToks) == 0 {
			continue
		}

		inter := intersection(toks, otherToks)
		if inter == 0 {
			continue
		}
		if inter >= j.OverlapThreshold {
			return true
		}
		union := len(toks) + len(otherToks) - inter
		if float64(inter)/float64(union) > j.SimilarityThreshold {
			return true
		}
	}
	return false
}

// FilterBatch drops candidates that duplicate the history pool or an earlier
// candidate in the same batch. The batch pool grows as items are accepted, so
// the same story arriving from two sources collapses to whichever came first.
// Returns the surviving indexes in input order.
func (j Judge) FilterBatch(titles []string, historyPool []string) []int {
	accepted := make([]int, 0, len(titles))
	batchPool := make([]string, 0, len(titles))

	for i, title := range titles {
		if j.IsDuplicate(title, historyPool) {
			continue
		}
		if j.IsDuplicate(title, batchPool) {
			continue
		}
		accepted = append(accepted, i)
		batchPool = append(batchPool, title)
	}
	return accepted
}
