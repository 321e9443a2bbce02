package locate

import (
	"fmt"
	"math"

	"github.com/FocuswithJustin/SpanRelocator/core/document"
	"github.com/FocuswithJustin/SpanRelocator/core/errors"
)

// DefaultCutoff is the minimum score accepted when no cutoff is configured.
const DefaultCutoff = 60.0

// FoundSpan is the result of one relocation.
type FoundSpan struct {
	// DestStart and DestEnd bound the match in the document, half-open.
	DestStart int `json:"dest_start"`
	DestEnd   int `json:"dest_end"`

	// SrcStart and SrcEnd bound the part of the query that was matched, half-open.
	SrcStart int `json:"src_start"`
	SrcEnd   int `json:"src_end"`

	// Score is the similarity in [0, 100].
	Score float64 `json:"score"`

	// Context is surrounding document text for human review.
	Context string `json:"context,omitempty"`
}

// Len returns the number of document characters covered.
func (s FoundSpan) Len() int {
	return s.DestEnd - s.DestStart
}

// Overlaps reports whether two spans share at least one document character.
func (s FoundSpan) Overlaps(o FoundSpan) bool {
	return s.DestStart < o.DestEnd && o.DestStart < s.DestEnd
}

// Options configures a Locator.
type Options struct {
	// Cutoff is the minimum accepted score, 0 to 100.
	Cutoff float64 `json:"cutoff"`

	// ContextWidth is the number of characters captured on each side of a match.
	ContextWidth int `json:"context_width"`
}

// DefaultOptions returns the default locator options.
func DefaultOptions() Options {
	return Options{
		Cutoff:       DefaultCutoff,
		ContextWidth: document.DefaultContextWidth,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	return validateCutoff(o.Cutoff)
}

// Locator relocates queries within one document. It holds no mutable state
// and is safe for concurrent use.
type Locator struct {
	doc  *document.Document
	opts Options
}

// New creates a Locator for doc.
func New(doc *document.Document, opts Options) (*Locator, error) {
	if doc == nil {
		return nil, errors.NewInput("document", "must not be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.ContextWidth < 0 {
		opts.ContextWidth = 0
	}
	return &Locator{doc: doc, opts: opts}, nil
}

// Options returns the locator configuration.
func (l *Locator) Options() Options {
	return l.opts
}

// Document returns the document being searched.
func (l *Locator) Document() *document.Document {
	return l.doc
}

// Locate finds the best match for query. It returns (nil, nil) when the best
// score is below the configured cutoff.
func (l *Locator) Locate(query string) (*FoundSpan, error) {
	span, err := locateRunes([]rune(query), l.doc.Runes(), l.opts.Cutoff)
	if err != nil || span == nil {
		return nil, err
	}
	span.Context = l.doc.Context(span.DestStart, span.DestEnd, l.opts.ContextWidth)
	return span, nil
}

// Locate finds the substring of text that best matches query.
// It fails with an error wrapping errors.ErrInvalidInput when query is
// empty, longer than text, or cutoff lies outside [0, 100], and returns
// (nil, nil) when no window scores at least cutoff.
func Locate(query, text string, cutoff float64) (*FoundSpan, error) {
	return locateRunes([]rune(query), []rune(text), cutoff)
}

func locateRunes(q, d []rune, cutoff float64) (*FoundSpan, error) {
	if err := validate(q, d, cutoff); err != nil {
		return nil, err
	}

	m := len(q)
	best := leftmost(q, d, optimum(q, d))
	best = refine(q, d, best)
	if best.score(m) < cutoff {
		return nil, nil
	}
	span := best.toSpan(q, d)
	return &span, nil
}

// validate checks the arguments shared by Locate and FindFiltered.
func validate(q, d []rune, cutoff float64) error {
	if len(q) == 0 {
		return errors.NewInput("query", "must not be empty")
	}
	if len(q) > len(d) {
		return errors.NewInput("query", fmt.Sprintf("longer than document (%d > %d characters)", len(q), len(d)))
	}
	return validateCutoff(cutoff)
}

func validateCutoff(cutoff float64) error {
	if math.IsNaN(cutoff) || cutoff < 0 || cutoff > 100 {
		return errors.NewInput("cutoff", fmt.Sprintf("%v is outside [0, 100]", cutoff))
	}
	return nil
}
