// Package document holds the reference text that annotations are relocated into.
//
// A Document is an immutable sequence of Unicode code points. All offsets
// exchanged with the rest of SpanRelocator (declared positions, located spans,
// segments) count characters, not bytes, so multi-byte text keeps the same
// coordinates in every consumer.
package document

import (
	"strings"
	"sync"
)

// DefaultContextWidth is the number of characters shown on each side of a
// located span in review snippets.
const DefaultContextWidth = 20

// Document is a flat, immutable character sequence indexed from 0.
type Document struct {
	text        string
	runes       []rune
	source      string
	hashOnce    sync.Once
	fingerprint string
}

// New creates a Document from UTF-8 text.
func New(text string) *Document {
	return &Document{
		text:  text,
		runes: []rune(text),
	}
}

// Text returns the document text.
func (d *Document) Text() string {
	return d.text
}

// Len returns the document length in characters.
func (d *Document) Len() int {
	return len(d.runes)
}

// Runes returns the document characters. The slice is shared and must not be modified.
func (d *Document) Runes() []rune {
	return d.runes
}

// Source returns the path the document was loaded from, if any.
func (d *Document) Source() string {
	return d.source
}

// Slice returns the text in the half-open character range [start, end),
// clamped to the document bounds.
func (d *Document) Slice(start, end int) string {
	start, end = d.clamp(start, end)
	return string(d.runes[start:end])
}

// Context returns the text from start-width to end+width, clamped to the
// document, with line breaks flattened to spaces for single-line display.
func (d *Document) Context(start, end, width int) string {
	if width < 0 {
		width = 0
	}
	snippet := d.Slice(start-width, end+width)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(snippet)
}

// LineStarts returns the character offset at which every line begins.
// The first entry is always 0.
func (d *Document) LineStarts() []int {
	starts := []int{0}
	for i, r := range d.runes {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (d *Document) clamp(start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(d.runes) {
		end = len(d.runes)
	}
	if start > end {
		start = end
	}
	return start, end
}
