package annotation

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/SpanRelocator/core/errors"
)

// idPattern is the identifier format of the standoff output.
var idPattern = regexp.MustCompile(`^T\d+$`)

// maxLineBytes bounds a single record when reading from a stream.
const maxLineBytes = 1 << 20

// Parse validates lines against layout. It returns a set holding every
// well-formed record and one error per malformed line; a bad line never
// prevents its neighbours from parsing. Whitespace-only lines are skipped
// but still counted for line numbers.
func Parse(lines []string, layout Layout) (*Set, []error) {
	set := &Set{layout: layout}
	if err := layout.Validate(); err != nil {
		return set, []error{err}
	}

	var errs []error
	for i, line := range lines {
		lineNum := i + 1
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		entity, err := parseRecord(line, lineNum, layout)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set.entities = append(set.entities, entity)
	}
	return set, errs
}

// ParseString splits content into lines and parses them.
func ParseString(content string, layout Layout) (*Set, []error) {
	return Parse(strings.Split(content, "\n"), layout)
}

// ParseReader reads newline-delimited records from r and parses them.
// The returned error reports a read failure; record errors are in the slice.
func ParseReader(r io.Reader, layout Layout) (*Set, []error, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, nil, err
	}
	set, errs := Parse(lines, layout)
	return set, errs, nil
}

// ReadLines splits r into lines without their terminators.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIO("read", "annotations", err)
	}
	return lines, nil
}

// parseRecord converts one line into an EntityAnnotation.
func parseRecord(line string, lineNum int, layout Layout) (*EntityAnnotation, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < layout.MinFields() {
		return nil, errors.NewSchema(lineNum, "",
			fmt.Sprintf("expected at least %d tab-separated fields, got %d", layout.MinFields(), len(fields)))
	}

	id := fields[0]
	if !idPattern.MatchString(id) {
		return nil, errors.NewSchema(lineNum, string(ColumnID), fmt.Sprintf("%q does not match T<digits>", id))
	}

	start, err := parsePosition(fields[2], lineNum, ColumnStart)
	if err != nil {
		return nil, err
	}
	end, err := parsePosition(fields[3], lineNum, ColumnEnd)
	if err != nil {
		return nil, err
	}

	entity := &EntityAnnotation{
		ID:            id,
		EntityType:    fields[1],
		DeclaredStart: start,
		DeclaredEnd:   end,
		Text:          fields[4],
		Line:          lineNum,
	}

	for i, col := range layout.Optional {
		value := col.Default
		if idx := layout.MinFields() + i; idx < len(fields) {
			value = fields[idx]
		}

		switch col.Name {
		case ColumnAnnotationType:
			at := AnnotationType(value)
			if !at.IsValid() {
				return nil, errors.NewSchema(lineNum, string(ColumnAnnotationType),
					fmt.Sprintf("%q is not one of Explicit, Inferred, Predicted or empty", value))
			}
			entity.AnnotationType = at
		case ColumnContext:
			entity.Context = value
		}
	}

	return entity, nil
}

// parsePosition parses a declared offset.
func parsePosition(field string, lineNum int, col Column) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, errors.NewSchema(lineNum, string(col), fmt.Sprintf("%q is not an integer", field))
	}
	if n < 0 {
		return 0, errors.NewSchema(lineNum, string(col), fmt.Sprintf("%d must be non-negative", n))
	}
	return n, nil
}
