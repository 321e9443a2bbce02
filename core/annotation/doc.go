// Package annotation parses entity annotation records into validated sets.
//
// Records arrive as newline-delimited, tab-separated lines produced by an
// upstream process whose declared offsets cannot be trusted:
//
//	id  entity_type  start  end  text  [annotation_type]  [context]
//
// # Layout
//
// Which optional trailing columns a file carries, and their defaults, is a
// Layout. Layouts can be written as a short column list, for example
//
//	id entity_type start end text [annotation_type=Explicit] [context]
//
// The five required columns always come first and in this order. Fields past
// the last declared column are ignored.
//
// # Error isolation
//
// Parse never stops at a bad line. Every malformed record yields exactly one
// *errors.SchemaError tagged with its 1-based line number, and every
// well-formed record yields an EntityAnnotation, regardless of its neighbours.
//
// # Example
//
//	set, errs := annotation.Parse(lines, annotation.DefaultLayout())
//	for _, err := range errs {
//	    fmt.Println(err)
//	}
//	for _, e := range set.Entities() {
//	    fmt.Println(e.ID, e.Text)
//	}
package annotation
