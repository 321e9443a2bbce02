package annotation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/SpanRelocator/core/errors"
)

// Column names a field of an annotation record.
type Column string

// Column constants.
const (
	ColumnID             Column = "id"
	ColumnEntityType     Column = "entity_type"
	ColumnStart          Column = "start"
	ColumnEnd            Column = "end"
	ColumnText           Column = "text"
	ColumnAnnotationType Column = "annotation_type"
	ColumnContext        Column = "context"
)

// requiredColumns are the leading columns every record carries, in order.
var requiredColumns = []Column{ColumnID, ColumnEntityType, ColumnStart, ColumnEnd, ColumnText}

// optionalColumns is the set of recognised trailing columns.
var optionalColumns = map[Column]bool{
	ColumnAnnotationType: true,
	ColumnContext:        true,
}

// OptionalColumn is a trailing column with the value used when a record omits it.
type OptionalColumn struct {
	Name    Column `json:"name"`
	Default string `json:"default,omitempty"`
}

// Layout enumerates the optional columns that follow the five required ones.
// The position of an optional column is its index in Optional plus five.
type Layout struct {
	Optional []OptionalColumn `json:"optional,omitempty"`
}

// DefaultLayout is the seven-column layout: annotation_type then context,
// both defaulting to the empty string.
func DefaultLayout() Layout {
	return Layout{
		Optional: []OptionalColumn{
			{Name: ColumnAnnotationType},
			{Name: ColumnContext},
		},
	}
}

// MinFields is the number of fields a record needs before optional columns.
func (l Layout) MinFields() int {
	return len(requiredColumns)
}

// Validate checks that every optional column is recognised, appears once,
// and has a usable default.
func (l Layout) Validate() error {
	seen := make(map[Column]bool)
	for _, col := range l.Optional {
		if !optionalColumns[col.Name] {
			if isRequired(col.Name) {
				return errors.NewParse("layout", "", fmt.Sprintf("column %q is required and cannot be optional", col.Name))
			}
			return errors.NewParse("layout", "", fmt.Sprintf("unknown column %q", col.Name))
		}
		if seen[col.Name] {
			return errors.NewParse("layout", "", fmt.Sprintf("column %q declared twice", col.Name))
		}
		seen[col.Name] = true

		if col.Name == ColumnAnnotationType && !AnnotationType(col.Default).IsValid() {
			return errors.NewParse("layout", "", fmt.Sprintf("invalid annotation_type default %q", col.Default))
		}
	}
	return nil
}

// String renders the layout in the column-list syntax accepted by ParseLayout.
func (l Layout) String() string {
	parts := make([]string, 0, len(requiredColumns)+len(l.Optional))
	for _, col := range requiredColumns {
		parts = append(parts, string(col))
	}
	for _, col := range l.Optional {
		switch {
		case col.Default == "":
			parts = append(parts, "["+string(col.Name)+"]")
		case identPattern.MatchString(col.Default):
			parts = append(parts, "["+string(col.Name)+"="+col.Default+"]")
		default:
			parts = append(parts, "["+string(col.Name)+"="+strconv.Quote(col.Default)+"]")
		}
	}
	return strings.Join(parts, " ")
}

func isRequired(c Column) bool {
	for _, r := range requiredColumns {
		if r == c {
			return true
		}
	}
	return false
}

// identPattern matches values that can be written without quotes.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// layoutGrammar is the participle grammar for column lists.
// Example: `id entity_type start end text [annotation_type=Explicit] [context]`
//
//nolint:govet // participle grammar tags are not standard struct tags
type layoutGrammar struct {
	Columns []*columnGrammar `@@+`
}

//nolint:govet // participle grammar tags are not standard struct tags
type columnGrammar struct {
	Optional *optionalGrammar `  "[" @@ "]"`
	Required string           `| @Ident`
}

//nolint:govet // participle grammar tags are not standard struct tags
type optionalGrammar struct {
	Name    string  `@Ident`
	Default *string `( "=" @(String | Ident) )?`
}

// layoutLexer defines the lexer for column lists.
var layoutLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[\[\]=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// layoutParser is the participle parser for column lists.
var layoutParser = participle.MustBuild[layoutGrammar](
	participle.Lexer(layoutLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// ParseLayout parses a column list such as
// "id entity_type start end text [annotation_type] [context]".
// The result is validated before it is returned.
func ParseLayout(s string) (Layout, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Layout{}, errors.NewParse("layout", "", "empty column list")
	}

	parsed, err := layoutParser.ParseString("", s)
	if err != nil {
		return Layout{}, errors.NewParse("layout", "", fmt.Sprintf("invalid column list %q: %v", s, err))
	}

	if len(parsed.Columns) < len(requiredColumns) {
		return Layout{}, errors.NewParse("layout", "",
			fmt.Sprintf("expected at least %d columns, got %d", len(requiredColumns), len(parsed.Columns)))
	}

	for i, want := range requiredColumns {
		col := parsed.Columns[i]
		if col.Optional != nil {
			return Layout{}, errors.NewParse("layout", "", fmt.Sprintf("column %d (%s) cannot be optional", i+1, want))
		}
		if Column(col.Required) != want {
			return Layout{}, errors.NewParse("layout", "", fmt.Sprintf("column %d must be %q, got %q", i+1, want, col.Required))
		}
	}

	var layout Layout
	for _, col := range parsed.Columns[len(requiredColumns):] {
		if col.Optional == nil {
			return Layout{}, errors.NewParse("layout", "", fmt.Sprintf("trailing column %q must be written as [%s]", col.Required, col.Required))
		}
		oc := OptionalColumn{Name: Column(col.Optional.Name)}
		if col.Optional.Default != nil {
			oc.Default = *col.Optional.Default
		}
		layout.Optional = append(layout.Optional, oc)
	}

	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}
