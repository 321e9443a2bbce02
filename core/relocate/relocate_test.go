package relocate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/SpanRelocator/core/annotation"
	"github.com/FocuswithJustin/SpanRelocator/core/brat"
	"github.com/FocuswithJustin/SpanRelocator/core/compose"
	"github.com/FocuswithJustin/SpanRelocator/core/document"
	spanerrors "github.com/FocuswithJustin/SpanRelocator/core/errors"
	"github.com/FocuswithJustin/SpanRelocator/core/locate"
)

const text = "Alice met Bob in Paris on Monday. Later, Alice flew to Rome."

func request(lines ...string) Request {
	return Request{
		RunID:    "test-run",
		Document: document.New(text),
		Lines:    lines,
		Layout:   annotation.DefaultLayout(),
		Options:  locate.DefaultOptions(),
		Workers:  4,
	}
}

func TestRun(t *testing.T) {
	req := request(
		"T1\tPERSON\t999\t1004\tAlice",
		"T2\tPERSON\t0\t3\tBob",
		"T3\tPLACE\t0\t5\tPari",
		"broken line",
		"T4\tPLACE\t0\t4\tQuxembourg",
		"T5\tDATE\t0\t6\tMondey",
		"T6\tPLACE\t0\t0\t",
	)

	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.RunID != "test-run" {
		t.Errorf("RunID = %q, want test-run", res.RunID)
	}
	if res.Fingerprint != req.Document.Fingerprint() {
		t.Errorf("Fingerprint = %q", res.Fingerprint)
	}
	if res.Set.Len() != 6 {
		t.Fatalf("Set.Len() = %d, want 6", res.Set.Len())
	}
	if res.Rejected != 1 || res.Failed != 1 || res.Located != 4 || res.Unmatched != 1 {
		t.Errorf("counts = rejected %d failed %d located %d unmatched %d, want 1 1 4 1",
			res.Rejected, res.Failed, res.Located, res.Unmatched)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2", res.Errors)
	}
	if !errors.Is(res.Errors[0], spanerrors.ErrSchema) {
		t.Errorf("Errors[0] = %v, want schema error", res.Errors[0])
	}
	if !errors.Is(res.Errors[1], spanerrors.ErrInvalidInput) || !strings.Contains(res.Errors[1].Error(), "T6") {
		t.Errorf("Errors[1] = %v, want invalid input for T6", res.Errors[1])
	}

	want := map[string][2]int{
		"T1": {0, 5},
		"T2": {10, 13},
		"T3": {17, 21},
		"T5": {26, 32},
	}
	for id, bounds := range want {
		e, ok := res.Set.ByID(id)
		if !ok {
			t.Fatalf("ByID(%s) not found", id)
		}
		span, ok := e.Latest()
		if !ok {
			t.Errorf("%s has no located span", id)
			continue
		}
		if span.DestStart != bounds[0] || span.DestEnd != bounds[1] {
			t.Errorf("%s located at [%d,%d), want [%d,%d)", id, span.DestStart, span.DestEnd, bounds[0], bounds[1])
		}
		if span.Context == "" {
			t.Errorf("%s has no context", id)
		}
	}
	if e, _ := res.Set.ByID("T4"); len(e.LocatedSpans) != 0 {
		t.Errorf("T4 located at %+v, want unmatched", e.LocatedSpans)
	}
}

func TestRunAssignsRunID(t *testing.T) {
	req := request("T1\tPERSON\t0\t5\tAlice")
	req.RunID = ""

	first, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first.RunID == "" || first.RunID == second.RunID {
		t.Errorf("run ids %q and %q should be distinct and non-empty", first.RunID, second.RunID)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	lines := []string{
		"T1\tPERSON\t0\t5\tAlice",
		"T2\tPLACE\t0\t4\tRome",
		"T3\tPERSON\t0\t3\tBob",
		"T4\tPLACE\t0\t5\tParis",
	}

	var outputs []string
	for _, workers := range []int{1, 2, 8} {
		req := request(lines...)
		req.Workers = workers
		res, err := Run(context.Background(), req)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		outputs = append(outputs, brat.Format(res.Set))
	}
	for i := 1; i < len(outputs); i++ {
		if outputs[i] != outputs[0] {
			t.Errorf("output with different worker count differs:\n%s\nvs\n%s", outputs[0], outputs[i])
		}
	}
	if !strings.HasPrefix(outputs[0], "T1\tPERSON\t0\t5\tAlice\n") {
		t.Errorf("unexpected output %q", outputs[0])
	}
}

func TestRunInvalidRequest(t *testing.T) {
	req := request()
	req.Document = nil
	if _, err := Run(context.Background(), req); !errors.Is(err, spanerrors.ErrInvalidInput) {
		t.Errorf("Run(nil document) error = %v, want ErrInvalidInput", err)
	}

	req = request()
	req.Options.Cutoff = 150
	if _, err := Run(context.Background(), req); !errors.Is(err, spanerrors.ErrInvalidInput) {
		t.Errorf("Run(cutoff 150) error = %v, want ErrInvalidInput", err)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, request("T1\tPERSON\t0\t5\tAlice")); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRelocateAppendsPerPass(t *testing.T) {
	doc := document.New(text)
	set, errs := annotation.Parse([]string{"T1\tPERSON\t0\t5\tAlice"}, annotation.DefaultLayout())
	if len(errs) != 0 {
		t.Fatalf("Parse() errors = %v", errs)
	}

	strict, err := locate.New(doc, locate.Options{Cutoff: 100})
	if err != nil {
		t.Fatalf("locate.New() error = %v", err)
	}
	for range 2 {
		if _, errs, err := Relocate(context.Background(), set, strict, 1); err != nil || len(errs) != 0 {
			t.Fatalf("Relocate() = %v, %v", errs, err)
		}
	}

	e := set.Entities()[0]
	if len(e.LocatedSpans) != 2 {
		t.Fatalf("LocatedSpans = %+v, want two passes", e.LocatedSpans)
	}
	if e.LocatedSpans[0] != e.LocatedSpans[1] {
		t.Errorf("passes disagree: %+v", e.LocatedSpans)
	}
	if out := brat.Format(set); strings.Count(out, "\n") != 1 {
		t.Errorf("Format() = %q, want two lines", out)
	}
	if dups := brat.CheckUniqueIDs(set); len(dups) != 1 {
		t.Errorf("CheckUniqueIDs() = %v, want one duplicate", dups)
	}
}

func TestRelocateRepeatedText(t *testing.T) {
	res, err := Run(context.Background(), request(
		"T1\tPERSON\t0\t5\tAlice",
		"T2\tPERSON\t40\t45\tAlice",
		"T3\tPERSON\t9\t9\t",
		"T4\tPERSON\t9\t9\t",
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ents := res.Set.Entities()
	if len(ents[0].LocatedSpans) != 1 || len(ents[1].LocatedSpans) != 1 {
		t.Fatalf("repeated text not located for both entities")
	}
	if ents[0].LocatedSpans[0] != ents[1].LocatedSpans[0] {
		t.Errorf("repeated text located differently: %+v vs %+v", ents[0].LocatedSpans, ents[1].LocatedSpans)
	}
	if res.Failed != 2 || len(res.Errors) != 2 {
		t.Errorf("Failed = %d, Errors = %v, want both empty texts reported", res.Failed, res.Errors)
	}
}

func TestSegments(t *testing.T) {
	res, err := Run(context.Background(), request(
		"T1\tPERSON\t0\t5\tAlice met",
		"T2\tPERSON\t0\t3\tmet Bob",
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	segs, err := res.Segments()
	if err != nil {
		t.Fatalf("Segments() error = %v", err)
	}
	want := []compose.Segment[string]{
		{Start: 0, End: 6, Labels: []string{"T1"}},
		{Start: 6, End: 9, Labels: []string{"T1", "T2"}},
		{Start: 9, End: 13, Labels: []string{"T2"}},
		{Start: 13, End: len([]rune(text)), Labels: []string{}},
	}
	if !reflect.DeepEqual(segs, want) {
		t.Errorf("Segments() = %+v, want %+v", segs, want)
	}

	if _, err := Segments(nil, res.Set); !errors.Is(err, spanerrors.ErrInvalidInput) {
		t.Errorf("Segments(nil) error = %v, want ErrInvalidInput", err)
	}
}

func TestSegmentsRepeatedIDs(t *testing.T) {
	res, err := Run(context.Background(), request(
		"T1\tPERSON\t0\t5\tAlice",
		"T1\tPERSON\t9\t13\tBob",
		"T2\tPLACE\t17\t22\tParis",
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	segs, err := res.Segments()
	if err != nil {
		t.Fatalf("Segments() error = %v", err)
	}

	var labels []string
	for _, s := range segs {
		labels = append(labels, s.Labels...)
	}
	if want := []string{"T1:1", "T1:2", "T2"}; !reflect.DeepEqual(labels, want) {
		t.Errorf("segment labels = %v, want %v", labels, want)
	}
}
