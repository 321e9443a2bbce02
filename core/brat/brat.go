// Package brat writes relocated annotations in the brat standoff format.
//
// Each located span becomes one line:
//
//	id<TAB>entity_type<TAB>start<TAB>end<TAB>text
//
// Lines follow entity order, then the order in which spans were located.
package brat

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/SpanRelocator/core/annotation"
	"github.com/FocuswithJustin/SpanRelocator/core/errors"
)

// Line is one standoff record.
type Line struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
}

// String renders the record without a trailing newline.
func (l Line) String() string {
	return strings.Join([]string{l.ID, l.EntityType, strconv.Itoa(l.Start), strconv.Itoa(l.End), l.Text}, "\t")
}

// Lines returns one record per located span. Entities without located spans
// contribute nothing.
func Lines(set annotation.Validated) []Line {
	var lines []Line
	for _, e := range set.Entities() {
		for _, span := range e.LocatedSpans {
			lines = append(lines, Line{
				ID:         e.ID,
				EntityType: e.EntityType,
				Start:      span.DestStart,
				End:        span.DestEnd,
				Text:       e.Text,
			})
		}
	}
	return lines
}

// Format renders set as newline-separated standoff records. The result is
// empty when no entity has been located.
func Format(set annotation.Validated) string {
	lines := Lines(set)
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.String())
	}
	return b.String()
}

// CheckUniqueIDs returns one *errors.DuplicateIDError for every id that
// Format would write on more than one line, in order of first appearance.
func CheckUniqueIDs(set annotation.Validated) []error {
	lineNums := make(map[string][]int)
	var order []string
	for i, l := range Lines(set) {
		if _, ok := lineNums[l.ID]; !ok {
			order = append(order, l.ID)
		}
		lineNums[l.ID] = append(lineNums[l.ID], i+1)
	}

	var errs []error
	for _, id := range order {
		if lines := lineNums[id]; len(lines) > 1 {
			errs = append(errs, &errors.DuplicateIDError{ID: id, Lines: lines})
		}
	}
	return errs
}
