package locate

import (
	"iter"
	"slices"
)

// FindFiltered returns every non-overlapping window of text that matches
// query with a score of at least cutoff, best first. Candidates are taken
// greedily in order of score, then start, then end; a candidate that
// overlaps one already taken is dropped.
//
// The returned sequence is computed eagerly and may be ranged over any
// number of times.
func FindFiltered(query, text string, cutoff float64) (iter.Seq[FoundSpan], error) {
	spans, err := findFiltered([]rune(query), []rune(text), cutoff)
	if err != nil {
		return nil, err
	}
	return slices.Values(spans), nil
}

// FindFiltered is the method form of the package function. Each span carries
// context from the locator's document.
func (l *Locator) FindFiltered(query string) (iter.Seq[FoundSpan], error) {
	spans, err := findFiltered([]rune(query), l.doc.Runes(), l.opts.Cutoff)
	if err != nil {
		return nil, err
	}
	for i := range spans {
		spans[i].Context = l.doc.Context(spans[i].DestStart, spans[i].DestEnd, l.opts.ContextWidth)
	}
	return slices.Values(spans), nil
}

func findFiltered(q, d []rune, cutoff float64) ([]FoundSpan, error) {
	if err := validate(q, d, cutoff); err != nil {
		return nil, err
	}
	m := len(q)

	// Both scans yield one window per end offset. The second catches
	// windows longer than the query that clear the cutoff. The optimum is
	// added so the best score is never missed.
	seen := make(map[window]bool)
	var candidates []window
	add := func(w window) {
		if !seen[w] && w.score(m) >= cutoff {
			seen[w] = true
			candidates = append(candidates, w)
		}
	}
	closest, long := scan(q, d), scanRatio(q, d, cutoffRatio(cutoff))
	for j := range closest {
		add(closest[j])
		add(long[j])
	}
	add(optimum(q, d))
	slices.SortFunc(candidates, func(a, b window) int {
		return compareWindows(a, b, m)
	})

	taken := make([]bool, len(d))
	var kept []window
	for _, w := range candidates {
		if slices.Contains(taken[w.start:w.end], true) {
			continue
		}
		for i := w.start; i < w.end; i++ {
			taken[i] = true
		}
		kept = append(kept, w)
	}

	// Shrinking never leaves the original window, so kept windows stay
	// disjoint and above the cutoff.
	for i, w := range kept {
		kept[i] = refine(q, d, w)
	}
	slices.SortFunc(kept, func(a, b window) int {
		return compareWindows(a, b, m)
	})

	spans := make([]FoundSpan, len(kept))
	for i, w := range kept {
		spans[i] = w.toSpan(q, d)
	}
	return spans, nil
}

func compareWindows(a, b window, m int) int {
	switch {
	case a.better(b, m):
		return -1
	case b.better(a, m):
		return 1
	}
	return 0
}
