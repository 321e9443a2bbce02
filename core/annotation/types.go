package annotation

import (
	"github.com/FocuswithJustin/SpanRelocator/core/locate"
)

// AnnotationType is the provenance tag the upstream process attached to a record.
type AnnotationType string

// Annotation type constants.
const (
	AnnotationExplicit    AnnotationType = "Explicit"
	AnnotationInferred    AnnotationType = "Inferred"
	AnnotationPredicted   AnnotationType = "Predicted"
	AnnotationUnspecified AnnotationType = ""
)

// validAnnotationTypes is the set of valid annotation types.
var validAnnotationTypes = map[AnnotationType]bool{
	AnnotationExplicit:    true,
	AnnotationInferred:    true,
	AnnotationPredicted:   true,
	AnnotationUnspecified: true,
}

// IsValid returns true if the annotation type is valid.
func (a AnnotationType) IsValid() bool {
	return validAnnotationTypes[a]
}

// EntityAnnotation is one claimed occurrence of an entity in the document.
type EntityAnnotation struct {
	// ID matches T<digits>. Uniqueness is not enforced at parse time.
	ID string `json:"id"`

	// EntityType is a free-form label.
	EntityType string `json:"entity_type"`

	// DeclaredStart and DeclaredEnd are the offsets the source file claimed.
	// They are advisory only.
	DeclaredStart int `json:"declared_start"`
	DeclaredEnd   int `json:"declared_end"`

	// Text is the literal snippet to relocate.
	Text string `json:"text"`

	// AnnotationType is the provenance tag.
	AnnotationType AnnotationType `json:"annotation_type"`

	// Context is an optional free-text hint.
	Context string `json:"context,omitempty"`

	// Line is the 1-based source line the record came from.
	Line int `json:"line"`

	// LocatedSpans grows by one entry per relocation pass and is never reordered.
	LocatedSpans []locate.FoundSpan `json:"located_spans,omitempty"`
}

// AddLocated appends the result of a relocation pass.
func (e *EntityAnnotation) AddLocated(span locate.FoundSpan) {
	e.LocatedSpans = append(e.LocatedSpans, span)
}

// Latest returns the most recently appended located span.
func (e *EntityAnnotation) Latest() (locate.FoundSpan, bool) {
	if len(e.LocatedSpans) == 0 {
		return locate.FoundSpan{}, false
	}
	return e.LocatedSpans[len(e.LocatedSpans)-1], true
}
