// Package compose partitions a document into segments by the set of spans
// covering each character.
package compose

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/FocuswithJustin/SpanRelocator/core/errors"
)

// Span is a labelled half-open range [Start, End).
type Span[L cmp.Ordered] struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Label L   `json:"label"`
}

// Segment is a maximal run of characters covered by the same labels.
// Labels is sorted and never nil.
type Segment[L cmp.Ordered] struct {
	Start  int `json:"start"`
	End    int `json:"end"`
	Labels []L `json:"labels"`
}

// Len returns the number of characters in the segment.
func (s Segment[L]) Len() int {
	return s.End - s.Start
}

// Has reports whether label is active in the segment.
func (s Segment[L]) Has(label L) bool {
	_, found := slices.BinarySearch(s.Labels, label)
	return found
}

type event[L cmp.Ordered] struct {
	pos   int
	open  bool
	label L
}

// Compose sweeps the boundaries of spans over a document of length
// characters and returns the ordered segments covering [0, length).
// Spans closing at a boundary are removed before spans opening there, so no
// zero-width segment is produced. Adjacent segments with equal label sets
// are merged. A label covering a character through several spans appears
// once. The result does not depend on the order of spans.
//
// An empty span list yields one unlabelled segment over the whole document;
// an empty document yields no segments.
func Compose[L cmp.Ordered](length int, spans []Span[L]) ([]Segment[L], error) {
	if length < 0 {
		return nil, errors.NewInput("length", fmt.Sprintf("%d is negative", length))
	}

	events := make([]event[L], 0, 2*len(spans))
	for i, s := range spans {
		if s.Start < 0 || s.End > length || s.Start > s.End {
			return nil, errors.NewInput("span", fmt.Sprintf("span %d [%d,%d) is outside [0,%d)", i, s.Start, s.End, length))
		}
		if s.Start == s.End {
			continue
		}
		events = append(events,
			event[L]{pos: s.Start, open: true, label: s.Label},
			event[L]{pos: s.End, open: false, label: s.Label},
		)
	}
	slices.SortFunc(events, func(a, b event[L]) int {
		if c := cmp.Compare(a.pos, b.pos); c != 0 {
			return c
		}
		if a.open != b.open {
			if a.open {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.label, b.label)
	})

	var segments []Segment[L]
	active := make(map[L]int)
	pos := 0
	emit := func(end int) {
		if end <= pos {
			return
		}
		labels := slices.Sorted(maps.Keys(active))
		if labels == nil {
			labels = []L{}
		}
		if n := len(segments); n > 0 && slices.Equal(segments[n-1].Labels, labels) {
			segments[n-1].End = end
		} else {
			segments = append(segments, Segment[L]{Start: pos, End: end, Labels: labels})
		}
		pos = end
	}

	for i := 0; i < len(events); {
		at := events[i].pos
		emit(at)
		for ; i < len(events) && events[i].pos == at; i++ {
			e := events[i]
			if e.open {
				active[e.label]++
				continue
			}
			if active[e.label]--; active[e.label] == 0 {
				delete(active, e.label)
			}
		}
	}
	emit(length)

	return segments, nil
}
