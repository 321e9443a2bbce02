package annotation

import (
	"bufio"
	"errors"
	"slices"
	"strings"
	"testing"

	spanerrors "github.com/FocuswithJustin/SpanRelocator/core/errors"
	"github.com/FocuswithJustin/SpanRelocator/core/locate"
)

func TestParseValidRecords(t *testing.T) {
	lines := []string{
		"T1\tPERSON\t0\t5\tAlice\tExplicit\tsaid Alice",
		"T2\tPLACE\t10\t16\tParis, France\tInferred",
		"T3\tORG\t20\t23\tACME",
	}

	set, errs := Parse(lines, DefaultLayout())
	if len(errs) != 0 {
		t.Fatalf("Parse() errors = %v", errs)
	}
	if set.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", set.Len())
	}

	tests := []struct {
		id      string
		typ     string
		text    string
		start   int
		end     int
		anno    AnnotationType
		context string
		line    int
	}{
		{"T1", "PERSON", "Alice", 0, 5, AnnotationExplicit, "said Alice", 1},
		{"T2", "PLACE", "Paris, France", 10, 16, AnnotationInferred, "", 2},
		{"T3", "ORG", "ACME", 20, 23, AnnotationUnspecified, "", 3},
	}
	for i, tt := range tests {
		e := set.Entities()[i]
		if e.ID != tt.id || e.EntityType != tt.typ || e.Text != tt.text {
			t.Errorf("entity %d = %+v, want id %s type %s text %q", i, e, tt.id, tt.typ, tt.text)
		}
		if e.DeclaredStart != tt.start || e.DeclaredEnd != tt.end {
			t.Errorf("entity %d declared = [%d,%d), want [%d,%d)", i, e.DeclaredStart, e.DeclaredEnd, tt.start, tt.end)
		}
		if e.AnnotationType != tt.anno || e.Context != tt.context || e.Line != tt.line {
			t.Errorf("entity %d = %+v", i, e)
		}
		if len(e.LocatedSpans) != 0 {
			t.Errorf("entity %d starts with %d located spans", i, len(e.LocatedSpans))
		}
	}
}

func TestParseIsolatesErrors(t *testing.T) {
	lines := []string{
		"T1\tPERSON\t0\t5\tAlice",
		"T2\tPERSON\tzero\t5\tBob",
		"",
		"   ",
		"X3\tPERSON\t0\t5\tCarol",
		"T4\tPERSON\t0\t-1\tDave",
		"T5\tPERSON\t0",
		"T6\tPERSON\t0\t5\tErin\tGuessed",
		"T7\tPERSON\t 7 \t9\tFrank\r",
	}

	set, errs := Parse(lines, DefaultLayout())

	var ids []string
	for _, e := range set.Entities() {
		ids = append(ids, e.ID)
	}
	if want := []string{"T1", "T7"}; !slices.Equal(ids, want) {
		t.Errorf("parsed ids = %v, want %v", ids, want)
	}

	wantErrs := []struct {
		line  int
		field string
	}{
		{2, "start"},
		{5, "id"},
		{6, "end"},
		{7, ""},
		{8, "annotation_type"},
	}
	if len(errs) != len(wantErrs) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(wantErrs), errs)
	}
	for i, want := range wantErrs {
		var se *spanerrors.SchemaError
		if !errors.As(errs[i], &se) {
			t.Fatalf("error %d = %T, want *SchemaError", i, errs[i])
		}
		if se.Line != want.line || se.Field != want.field {
			t.Errorf("error %d = line %d field %q, want line %d field %q", i, se.Line, se.Field, want.line, want.field)
		}
		if !errors.Is(errs[i], spanerrors.ErrSchema) {
			t.Errorf("error %d does not wrap ErrSchema", i)
		}
	}

	frank, ok := set.ByID("T7")
	if !ok {
		t.Fatal("ByID(T7) not found")
	}
	if frank.DeclaredStart != 7 || frank.Text != "Frank" {
		t.Errorf("T7 = %+v, want trimmed start and text", frank)
	}
}

func TestParseErrorMessages(t *testing.T) {
	_, errs := Parse([]string{"T1\tA\tB"}, DefaultLayout())
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if got, want := errs[0].Error(), "line 1: expected at least 5 tab-separated fields, got 3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseIgnoresExtraFields(t *testing.T) {
	set, errs := Parse([]string{"T1\tA\t0\t1\tx\tExplicit\tctx\textra\tmore"}, DefaultLayout())
	if len(errs) != 0 || set.Len() != 1 {
		t.Fatalf("Parse() = %d records, errors %v", set.Len(), errs)
	}
	if e := set.Entities()[0]; e.Context != "ctx" {
		t.Errorf("Context = %q, want ctx", e.Context)
	}
}

func TestParsePreservesText(t *testing.T) {
	texts := []string{" padded ", "ünïcödé", "a  b", `quote "x"`}
	var lines []string
	for i, text := range texts {
		lines = append(lines, "T"+string(rune('1'+i))+"\tX\t0\t1\t"+text)
	}

	set, errs := Parse(lines, DefaultLayout())
	if len(errs) != 0 {
		t.Fatalf("Parse() errors = %v", errs)
	}
	for i, e := range set.Entities() {
		if e.Text != texts[i] {
			t.Errorf("Text = %q, want %q", e.Text, texts[i])
		}
	}
}

func TestParseCustomLayout(t *testing.T) {
	layout, err := ParseLayout(`id entity_type start end text [context] [annotation_type=Predicted]`)
	if err != nil {
		t.Fatalf("ParseLayout() error = %v", err)
	}

	set, errs := Parse([]string{
		"T1\tA\t0\t1\tx\tnear the top",
		"T2\tA\t0\t1\ty\t\tExplicit",
	}, layout)
	if len(errs) != 0 {
		t.Fatalf("Parse() errors = %v", errs)
	}

	first, second := set.Entities()[0], set.Entities()[1]
	if first.Context != "near the top" || first.AnnotationType != AnnotationPredicted {
		t.Errorf("first = %+v", first)
	}
	if second.Context != "" || second.AnnotationType != AnnotationExplicit {
		t.Errorf("second = %+v", second)
	}
	if set.Layout().String() != layout.String() {
		t.Errorf("Layout() = %q, want %q", set.Layout(), layout)
	}
}

func TestParseRejectsInvalidLayout(t *testing.T) {
	layout := Layout{Optional: []OptionalColumn{{Name: "colour"}}}
	set, errs := Parse([]string{"T1\tA\t0\t1\tx"}, layout)
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
	if len(errs) != 1 || !errors.Is(errs[0], spanerrors.ErrInvalidInput) {
		t.Errorf("errors = %v, want one layout error", errs)
	}
}

func TestParseString(t *testing.T) {
	set, errs := ParseString("T1\tA\t0\t1\tx\n\nT2\tB\t1\t2\ty\n", DefaultLayout())
	if len(errs) != 0 || set.Len() != 2 {
		t.Fatalf("ParseString() = %d records, errors %v", set.Len(), errs)
	}
	if set.Entities()[1].Line != 3 {
		t.Errorf("second record line = %d, want 3", set.Entities()[1].Line)
	}
}

func TestParseReader(t *testing.T) {
	input := "T1\tA\t0\t1\tx\r\nbad line\r\nT2\tB\t1\t2\ty\r\n"
	set, errs, err := ParseReader(strings.NewReader(input), DefaultLayout())
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if set.Len() != 2 || len(errs) != 1 {
		t.Fatalf("ParseReader() = %d records, %d errors", set.Len(), len(errs))
	}
	if got := set.Entities()[0].Text; got != "x" {
		t.Errorf("Text = %q, want x", got)
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []OptionalColumn
	}{
		{
			name: "required only",
			in:   "id entity_type start end text",
		},
		{
			name: "default layout",
			in:   "id entity_type start end text [annotation_type] [context]",
			want: DefaultLayout().Optional,
		},
		{
			name: "ident default",
			in:   "id entity_type start end text [annotation_type=Inferred]",
			want: []OptionalColumn{{Name: ColumnAnnotationType, Default: "Inferred"}},
		},
		{
			name: "quoted default",
			in:   `id entity_type start end text [context="no hint, sorry"]`,
			want: []OptionalColumn{{Name: ColumnContext, Default: "no hint, sorry"}},
		},
		{
			name: "extra whitespace",
			in:   "  id  entity_type\tstart end text [ context ]  ",
			want: []OptionalColumn{{Name: ColumnContext}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := ParseLayout(tt.in)
			if err != nil {
				t.Fatalf("ParseLayout(%q) error = %v", tt.in, err)
			}
			if !slices.Equal(layout.Optional, tt.want) {
				t.Errorf("ParseLayout(%q) = %+v, want %+v", tt.in, layout.Optional, tt.want)
			}

			again, err := ParseLayout(layout.String())
			if err != nil {
				t.Fatalf("ParseLayout(String()) error = %v", err)
			}
			if !slices.Equal(again.Optional, layout.Optional) {
				t.Errorf("round trip = %+v, want %+v", again.Optional, layout.Optional)
			}
		})
	}
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too few columns", "id entity_type start"},
		{"wrong order", "entity_type id start end text"},
		{"optional required column", "id entity_type start [end] text"},
		{"unbracketed trailing column", "id entity_type start end text context"},
		{"unknown column", "id entity_type start end text [colour]"},
		{"duplicate column", "id entity_type start end text [context] [context]"},
		{"required column as optional", "id entity_type start end text [id]"},
		{"bad annotation default", "id entity_type start end text [annotation_type=Maybe]"},
		{"syntax error", "id entity_type start end text [context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout(tt.in)
			if err == nil {
				t.Fatalf("ParseLayout(%q) succeeded, want error", tt.in)
			}
			var pe *spanerrors.ParseError
			if !errors.As(err, &pe) || pe.Format != "layout" {
				t.Errorf("ParseLayout(%q) error = %v, want layout ParseError", tt.in, err)
			}
		})
	}
}

func TestSetQueries(t *testing.T) {
	set, errs := Parse([]string{
		"T1\tPERSON\t0\t1\ta",
		"T2\tPLACE\t0\t1\tb",
		"T1\tPERSON\t0\t1\tc",
		"T3\tDATE\t0\t1\td",
		"T1\tPLACE\t0\t1\te",
		"T3\tDATE\t0\t1\tf",
	}, DefaultLayout())
	if len(errs) != 0 {
		t.Fatalf("Parse() errors = %v", errs)
	}

	if got, want := set.DuplicateIDs(), []string{"T1", "T3"}; !slices.Equal(got, want) {
		t.Errorf("DuplicateIDs() = %v, want %v", got, want)
	}
	if got, want := set.EntityTypes(), []string{"DATE", "PERSON", "PLACE"}; !slices.Equal(got, want) {
		t.Errorf("EntityTypes() = %v, want %v", got, want)
	}
	if e, ok := set.ByID("T1"); !ok || e.Text != "a" {
		t.Errorf("ByID(T1) = %+v, %v; want first record", e, ok)
	}
	if _, ok := set.ByID("T9"); ok {
		t.Error("ByID(T9) found a record")
	}
}

func TestNilSet(t *testing.T) {
	var set *Set
	if set.Len() != 0 || set.Entities() != nil || len(set.EntityTypes()) != 0 {
		t.Error("nil Set should behave as empty")
	}
}

func TestLocatedSpansAppend(t *testing.T) {
	var e EntityAnnotation
	if _, ok := e.Latest(); ok {
		t.Error("Latest() on empty history reported a span")
	}

	e.AddLocated(locate.FoundSpan{DestStart: 1, DestEnd: 4, Score: 80})
	e.AddLocated(locate.FoundSpan{DestStart: 9, DestEnd: 12, Score: 95})

	latest, ok := e.Latest()
	if !ok || latest.DestStart != 9 {
		t.Errorf("Latest() = %+v, %v", latest, ok)
	}
	if len(e.LocatedSpans) != 2 || e.LocatedSpans[0].DestStart != 1 {
		t.Errorf("LocatedSpans = %+v, want append order", e.LocatedSpans)
	}
}

func TestAnnotationTypeIsValid(t *testing.T) {
	for _, at := range []AnnotationType{AnnotationExplicit, AnnotationInferred, AnnotationPredicted, AnnotationUnspecified} {
		if !at.IsValid() {
			t.Errorf("%q.IsValid() = false", at)
		}
	}
	if AnnotationType("explicit").IsValid() {
		t.Error(`"explicit".IsValid() = true, want false`)
	}
}

func TestReadLinesTooLong(t *testing.T) {
	long := strings.Repeat("x", maxLineBytes+1)
	if _, err := ReadLines(strings.NewReader(long)); !errors.Is(err, bufio.ErrTooLong) {
		t.Errorf("ReadLines() error = %v, want bufio.ErrTooLong", err)
	}
}
