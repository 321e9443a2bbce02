// Package relocate runs the full relocation pipeline: validate annotation
// records, locate each one in the document, and attach the results.
//
// A Request carries everything one run needs. Nothing is retained between
// runs, so independent requests may execute concurrently.
package relocate

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/SpanRelocator/core/annotation"
	"github.com/FocuswithJustin/SpanRelocator/core/compose"
	"github.com/FocuswithJustin/SpanRelocator/core/document"
	"github.com/FocuswithJustin/SpanRelocator/core/errors"
	"github.com/FocuswithJustin/SpanRelocator/core/locate"
	"github.com/FocuswithJustin/SpanRelocator/internal/cache"
	"github.com/FocuswithJustin/SpanRelocator/internal/logging"
	"github.com/FocuswithJustin/SpanRelocator/internal/workerpool"
)

// Request describes one relocation run.
type Request struct {
	// RunID tags log records. A random id is assigned when empty.
	RunID string

	Document *document.Document

	// Lines are the raw annotation records.
	Lines []string

	Layout  annotation.Layout
	Options locate.Options

	// Workers bounds concurrent locate calls; 0 means GOMAXPROCS.
	Workers int
}

// Result is the outcome of a run.
type Result struct {
	RunID       string
	Fingerprint string

	// Set holds every valid record with its located spans attached.
	Set *annotation.Set

	// Errors lists rejected records first, then failed locate calls, each
	// in source order.
	Errors []error

	Rejected  int
	Located   int
	Unmatched int
	Failed    int

	Duration time.Duration

	doc *document.Document
}

// Document returns the document the run searched.
func (r *Result) Document() *document.Document {
	return r.doc
}

// Run validates req.Lines and locates every valid record in req.Document.
// Record and locate failures are collected in Result.Errors and never stop
// the run. Run itself fails only for an unusable request or a cancelled
// context.
func Run(ctx context.Context, req Request) (*Result, error) {
	if req.Document == nil {
		return nil, errors.NewInput("document", "must not be nil")
	}
	locator, err := locate.New(req.Document, req.Options)
	if err != nil {
		return nil, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRequestID(ctx, runID)
	started := time.Now()

	res := &Result{
		RunID:       runID,
		Fingerprint: req.Document.Fingerprint(),
		doc:         req.Document,
	}

	set, schemaErrs := annotation.Parse(req.Lines, req.Layout)
	res.Set = set
	res.Rejected = len(schemaErrs)
	res.Errors = append(res.Errors, schemaErrs...)
	for _, err := range schemaErrs {
		logging.RecordRejected(ctx, err)
	}

	logging.RunStarted(ctx, set.Len(), req.Document.Len(), res.Fingerprint, "rejected", res.Rejected)

	stats, locateErrs, err := Relocate(ctx, set, locator, req.Workers)
	if err != nil {
		return nil, err
	}
	res.Located = stats.Located
	res.Unmatched = stats.Unmatched
	res.Failed = len(locateErrs)
	res.Errors = append(res.Errors, locateErrs...)
	res.Duration = time.Since(started)

	logging.RunFinished(ctx, res.Located, res.Unmatched, res.Failed, res.Duration, "rejected", res.Rejected)
	return res, nil
}

// Stats counts the outcomes of one relocation pass.
type Stats struct {
	Located   int
	Unmatched int
}

type outcome struct {
	span *locate.FoundSpan
	err  error
}

// Relocate runs one pass of locator over every entity of set, appending
// each match to the entity's located spans. Entities are searched
// concurrently; results are attached in entity order once all searches
// finish. A failed search is reported in the error slice and leaves its
// entity unchanged. The final error is non-nil only when ctx is cancelled,
// in which case nothing is attached. Entities with identical text share one
// search.
func Relocate(ctx context.Context, set *annotation.Set, locator *locate.Locator, workers int) (Stats, []error, error) {
	entities := set.Entities()
	memo := cache.New[string, outcome]()
	outcomes := workerpool.Map(ctx, workers, entities, func(ctx context.Context, e *annotation.EntityAnnotation) outcome {
		if err := ctx.Err(); err != nil {
			return outcome{err: err}
		}
		return memo.Do(e.Text, func() outcome {
			span, err := locator.Locate(e.Text)
			return outcome{span: span, err: err}
		})
	})
	if err := ctx.Err(); err != nil {
		return Stats{}, nil, err
	}
	if hits := memo.Hits(); hits > 0 {
		logging.DebugContext(ctx, "repeated_texts", "searches", memo.Len(), "reused", hits)
	}

	var stats Stats
	var errs []error
	for i, o := range outcomes {
		e := entities[i]
		switch {
		case o.err != nil:
			errs = append(errs, errors.Wrapf(o.err, "line %d: %s", e.Line, e.ID))
		case o.span == nil:
			stats.Unmatched++
			logging.DebugContext(ctx, "span_unmatched", "id", e.ID, "line", e.Line)
		default:
			e.AddLocated(*o.span)
			stats.Located++
			logging.SpanLocated(ctx, e.ID, o.span.DestStart, o.span.DestEnd, o.span.Score)
		}
	}
	return stats, errs, nil
}

// Segments partitions the document by the latest located span of each
// entity, labelled with entity ids.
func (r *Result) Segments() ([]compose.Segment[string], error) {
	return Segments(r.doc, r.Set)
}

// Segments partitions doc by the latest located span of each entity in set.
// Labels are entity ids; an id carried by several entities is suffixed with
// each entity's source line ("T4:7") so the entities stay distinguishable.
func Segments(doc *document.Document, set annotation.Validated) ([]compose.Segment[string], error) {
	if doc == nil {
		return nil, errors.NewInput("document", "must not be nil")
	}
	counts := make(map[string]int)
	for _, e := range set.Entities() {
		counts[e.ID]++
	}

	var spans []compose.Span[string]
	for _, e := range set.Entities() {
		s, ok := e.Latest()
		if !ok {
			continue
		}
		label := e.ID
		if counts[e.ID] > 1 {
			label = e.ID + ":" + strconv.Itoa(e.Line)
		}
		spans = append(spans, compose.Span[string]{Start: s.DestStart, End: s.DestEnd, Label: label})
	}
	return compose.Compose(doc.Len(), spans)
}
