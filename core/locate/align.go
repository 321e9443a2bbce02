package locate

import "math"

// window is a half-open document range [start, end) whose Levenshtein
// distance to the query is dist.
type window struct {
	start, end, dist int
}

// norm is the denominator of the similarity ratio.
func (w window) norm(m int) int {
	return max(m, w.end-w.start)
}

// score returns the similarity of w to a query of m characters.
func (w window) score(m int) float64 {
	return similarity(w.dist, w.norm(m))
}

func similarity(dist, norm int) float64 {
	if norm == 0 {
		return 100
	}
	return 100 * float64(norm-dist) / float64(norm)
}

// cmpScore compares the scores of a and b exactly, using cross
// multiplication of dist/norm. It returns a positive number when a scores
// higher than b.
func cmpScore(a, b window, m int) int {
	lhs := int64(b.dist) * int64(a.norm(m))
	rhs := int64(a.dist) * int64(b.norm(m))
	switch {
	case lhs > rhs:
		return 1
	case lhs < rhs:
		return -1
	}
	return 0
}

// better orders windows by score descending, then start ascending, then end
// ascending.
func (w window) better(o window, m int) bool {
	if c := cmpScore(w, o, m); c != 0 {
		return c > 0
	}
	if w.start != o.start {
		return w.start < o.start
	}
	return w.end < o.end
}

// scan aligns q against every substring of d. Entry j-1 of the result is the
// closest window ending at offset j. A leading document gap is free, so each
// column of the edit matrix starts at zero; the start offset of the best path
// is carried along with its cost. Among equal costs the later start wins,
// which keeps every window as short as its distance allows.
func scan(q, d []rune) []window {
	m, n := len(q), len(d)

	prev := make([]int, m+1)
	prevStart := make([]int, m+1)
	cur := make([]int, m+1)
	curStart := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}

	out := make([]window, n)
	for j := 1; j <= n; j++ {
		c := d[j-1]
		cur[0], curStart[0] = 0, j
		for i := 1; i <= m; i++ {
			cost, start := prev[i-1], prevStart[i-1]
			if q[i-1] != c {
				cost++
			}
			// Query character i-1 skipped.
			if v, s := cur[i-1]+1, curStart[i-1]; v < cost || (v == cost && s > start) {
				cost, start = v, s
			}
			// Document character j-1 skipped.
			if v, s := prev[i]+1, prevStart[i]; v < cost || (v == cost && s > start) {
				cost, start = v, s
			}
			cur[i], curStart[i] = cost, start
		}

		w := window{start: curStart[m], end: j, dist: cur[m]}
		if w.start == w.end {
			// Deleting the whole query won: d[j-1] is not in q, so the one
			// character window costs the same m edits.
			w.start = j - 1
		}
		out[j-1] = w

		prev, cur = cur, prev
		prevStart, curStart = curStart, prevStart
	}
	return out
}

// ratio is a score threshold num/den in [0, 1].
type ratio struct {
	num, den int
}

// ratioOf returns the exact score of w as a fraction of one.
func ratioOf(w window, m int) ratio {
	n := w.norm(m)
	return ratio{num: n - w.dist, den: n}
}

// cutoffRatio converts a 0 to 100 cutoff into a ratio, rounding down so no
// window at the cutoff is missed.
func cutoffRatio(cutoff float64) ratio {
	const den = 10000
	return ratio{num: int(math.Floor(cutoff * den / 100)), den: den}
}

// scanRatio is the companion of scan for windows longer than the query,
// whose score 1 − dist/len grows with their length. For every end offset it
// returns the window minimising r.den·dist − (r.den − r.num)·len, which is
// negative exactly when 1 − dist/len exceeds r. Every document character a
// window covers earns r.den − r.num and every edit costs r.den.
func scanRatio(q, d []rune, r ratio) []window {
	m, n := len(q), len(d)
	gain := int64(r.den - r.num)
	edit := int64(r.den)

	type cell struct {
		cost  int64
		dist  int
		start int
	}
	prev := make([]cell, m+1)
	cur := make([]cell, m+1)
	for i := range prev {
		prev[i] = cell{cost: int64(i) * edit, dist: i}
	}

	better := func(a, b cell) bool {
		return a.cost < b.cost || (a.cost == b.cost && a.start > b.start)
	}

	out := make([]window, n)
	for j := 1; j <= n; j++ {
		c := d[j-1]
		cur[0] = cell{start: j}
		for i := 1; i <= m; i++ {
			diag := prev[i-1]
			best := cell{cost: diag.cost - gain, dist: diag.dist, start: diag.start}
			if q[i-1] != c {
				best.cost += edit
				best.dist++
			}
			up := cur[i-1]
			if v := (cell{cost: up.cost + edit, dist: up.dist + 1, start: up.start}); better(v, best) {
				best = v
			}
			left := prev[i]
			if v := (cell{cost: left.cost + edit - gain, dist: left.dist + 1, start: left.start}); better(v, best) {
				best = v
			}
			cur[i] = best
		}

		w := window{start: cur[m].start, end: j, dist: cur[m].dist}
		if w.start == w.end {
			w.start = j - 1
		}
		out[j-1] = w
		prev, cur = cur, prev
	}
	return out
}

// maxRatioPasses bounds the refinement passes of optimum. Each pass
// strictly raises the best score and in practice two or three suffice.
const maxRatioPasses = 8

// bestWindow returns the best of ws, which must not be empty.
func bestWindow(ws []window, m int) window {
	best := ws[0]
	for _, w := range ws[1:] {
		if w.better(best, m) {
			best = w
		}
	}
	return best
}

// optimum returns a highest scoring window of d. Its start need not be the
// leftmost among tied windows; see leftmost.
func optimum(q, d []rune) window {
	m := len(q)
	best := bestWindow(scan(q, d), m)

	// Windows longer than the query are scored against their own length, so
	// the closest window per end is not always the best one. Raise the
	// threshold to each improvement until no window beats it.
	for range maxRatioPasses {
		if best.dist == 0 {
			break
		}
		prev := best
		best = bestWindow(append(scanRatio(q, d, ratioOf(prev, m)), prev), m)
		if cmpScore(best, prev, m) <= 0 {
			break
		}
	}
	return best
}

// leftmost returns the first-starting window that scores as well as best,
// shortest among those. The forward scans keep one start per end offset, so
// a tied window further left can be lost there. Running them over the
// reversed strings gives the cheapest window per start offset instead.
func leftmost(q, d []rune, best window) window {
	m, n := len(q), len(d)
	r := ratioOf(best, m)
	gain, edit := int64(r.den-r.num), int64(r.den)

	rq, rd := reversed(q), reversed(d)
	closest := scan(rq, rd)
	var long []window
	if r.num < r.den {
		long = scanRatio(rq, rd, r)
	}

	for s := 0; s < n; s++ {
		// Reversed windows ending at n-s start at s in d.
		k := n - s - 1
		ok := edit*int64(closest[k].dist) <= gain*int64(m)
		if !ok && long != nil {
			w := long[k]
			ok = edit*int64(w.dist)-gain*int64(w.end-w.start) <= 0
		}
		if !ok {
			continue
		}
		if w, found := bestFrom(q, d, s); found && cmpScore(w, best, m) >= 0 {
			return w
		}
		break
	}
	return best
}

// bestFrom returns the best window starting at s, shortest on ties.
func bestFrom(q, d []rune, s int) (window, bool) {
	m := len(q)
	col := make([]int, m+1)
	for i := range col {
		col[i] = i
	}

	var best window
	found := false
	for e := s + 1; e <= len(d); e++ {
		c := d[e-1]
		diag := col[0]
		col[0] = e - s
		for i := 1; i <= m; i++ {
			up := col[i]
			v := diag
			if q[i-1] != c {
				v++
			}
			col[i] = min(v, up+1, col[i-1]+1)
			diag = up
		}
		w := window{start: s, end: e, dist: col[m]}
		if !found || cmpScore(w, best, m) > 0 {
			best, found = w, true
		}
	}
	return best, found
}

func reversed(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[len(rs)-1-i] = r
	}
	return out
}

// refine shrinks w one character at a time, left end first, while the score
// does not decrease.
func refine(q, d []rune, w window) window {
	for w.end-w.start > 1 {
		if c, ok := shrink(q, d, w, w.start+1, w.end); ok {
			w = c
			continue
		}
		if c, ok := shrink(q, d, w, w.start, w.end-1); ok {
			w = c
			continue
		}
		break
	}
	return w
}

// shrink evaluates the window [start, end) and reports whether it scores at
// least as well as cur.
func shrink(q, d []rune, cur window, start, end int) (window, bool) {
	m := len(q)
	cand := window{start: start, end: end}
	// Largest distance that keeps dist/norm <= cur.dist/cur.norm.
	bound := int(int64(cur.dist) * int64(cand.norm(m)) / int64(cur.norm(m)))
	dist := levenshteinBounded(q, d[start:end], bound)
	if dist > bound {
		return cur, false
	}
	cand.dist = dist
	return cand, cmpScore(cand, cur, m) >= 0
}

// levenshteinBounded returns the edit distance between a and b, or any value
// greater than bound once the distance is known to exceed it.
func levenshteinBounded(a, b []rune, bound int) int {
	la, lb := len(a), len(b)
	if diff := la - lb; diff > bound || -diff > bound {
		return bound + 1
	}
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= la; i++ {
		diag := row[0]
		row[0] = i
		rowMin := row[0]
		for j := 1; j <= lb; j++ {
			up := row[j]
			v := diag
			if a[i-1] != b[j-1] {
				v++
			}
			v = min(v, up+1, row[j-1]+1)
			row[j] = v
			diag = up
			rowMin = min(rowMin, v)
		}
		if rowMin > bound {
			return bound + 1
		}
	}
	return row[lb]
}

// levenshtein returns the unbounded edit distance between a and b.
func levenshtein(a, b []rune) int {
	return levenshteinBounded(a, b, max(len(a), len(b)))
}

// alignedRange traces an optimal alignment of q against w and returns the
// half-open range of q between the first and last exactly matched
// characters. It returns (0, 0) when nothing matched.
func alignedRange(q, w []rune) (int, int) {
	m, l := len(q), len(w)
	cols := l + 1
	dp := make([]int32, (m+1)*cols)
	at := func(i, j int) int32 { return dp[i*cols+j] }

	for i := 0; i <= m; i++ {
		dp[i*cols] = int32(i)
	}
	for j := 0; j <= l; j++ {
		dp[j] = int32(j)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= l; j++ {
			v := at(i-1, j-1)
			if q[i-1] != w[j-1] {
				v++
			}
			v = min(v, at(i-1, j)+1, at(i, j-1)+1)
			dp[i*cols+j] = v
		}
	}

	first, last := -1, -1
	i, j := m, l
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && q[i-1] == w[j-1] && at(i, j) == at(i-1, j-1):
			if last < 0 {
				last = i
			}
			first = i - 1
			i, j = i-1, j-1
		case i > 0 && j > 0 && at(i, j) == at(i-1, j-1)+1:
			i, j = i-1, j-1
		case i > 0 && at(i, j) == at(i-1, j)+1:
			i--
		default:
			j--
		}
	}
	if first < 0 {
		return 0, 0
	}
	return first, last
}

// toSpan converts w into a FoundSpan without context.
func (w window) toSpan(q, d []rune) FoundSpan {
	srcStart, srcEnd := alignedRange(q, d[w.start:w.end])
	return FoundSpan{
		DestStart: w.start,
		DestEnd:   w.end,
		SrcStart:  srcStart,
		SrcEnd:    srcEnd,
		Score:     w.score(len(q)),
	}
}
