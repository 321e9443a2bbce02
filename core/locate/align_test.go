package locate

import "testing"

func TestLevenshteinBounded(t *testing.T) {
	tests := []struct {
		a, b  string
		bound int
		want  int
	}{
		{"kitten", "sitting", 10, 3},
		{"kitten", "sitting", 3, 3},
		{"", "abc", 5, 3},
		{"abc", "", 5, 3},
		{"same", "same", 0, 0},
		{"Bär", "Bar", 2, 1},
	}

	for _, tt := range tests {
		if got := levenshteinBounded([]rune(tt.a), []rune(tt.b), tt.bound); got != tt.want {
			t.Errorf("levenshteinBounded(%q, %q, %d) = %d, want %d", tt.a, tt.b, tt.bound, got, tt.want)
		}
	}

	if got := levenshteinBounded([]rune("kitten"), []rune("sitting"), 2); got <= 2 {
		t.Errorf("levenshteinBounded over bound = %d, want > 2", got)
	}
	if got := levenshteinBounded([]rune("a"), []rune("abcdef"), 1); got <= 1 {
		t.Errorf("levenshteinBounded length gap = %d, want > 1", got)
	}
}

func TestAlignedRange(t *testing.T) {
	tests := []struct {
		query, window      string
		wantStart, wantEnd int
	}{
		{"cat", "cat", 0, 3},
		{"xxcat", "cat", 2, 5},
		{"cat!!", "cat", 0, 3},
		{"cet", "cat", 0, 3},
		{"abc", "xyz", 0, 0},
	}

	for _, tt := range tests {
		start, end := alignedRange([]rune(tt.query), []rune(tt.window))
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("alignedRange(%q, %q) = [%d,%d), want [%d,%d)", tt.query, tt.window, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestScanKeepsShortestClosestWindow(t *testing.T) {
	ws := scan([]rune("cat"), []rune("a cat"))
	last := ws[len(ws)-1]
	if last.start != 2 || last.end != 5 || last.dist != 0 {
		t.Errorf("scan() last window = %+v, want [2,5) at distance 0", last)
	}

	// 'z' is absent from the query, so the window ending after it costs
	// the whole query.
	ws = scan([]rune("ab"), []rune("z"))
	if ws[0] != (window{start: 0, end: 1, dist: 2}) {
		t.Errorf("scan() = %+v, want [0,1) at distance 2", ws[0])
	}
}

func TestCmpScoreIsExact(t *testing.T) {
	m := 3
	a := window{start: 0, end: 3, dist: 1} // 2/3
	b := window{start: 0, end: 6, dist: 2} // 4/6
	if cmpScore(a, b, m) != 0 {
		t.Errorf("cmpScore(%+v, %+v) = %d, want 0", a, b, cmpScore(a, b, m))
	}
	if !a.better(b, m) {
		t.Error("shorter window should win a score tie at the same start")
	}
}

func TestCutoffRatio(t *testing.T) {
	if r := cutoffRatio(60); r.num != 6000 || r.den != 10000 {
		t.Errorf("cutoffRatio(60) = %+v", r)
	}
	if r := cutoffRatio(100); r.num != r.den {
		t.Errorf("cutoffRatio(100) = %+v", r)
	}
}
