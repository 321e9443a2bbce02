package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/SpanRelocator/core/annotation"
)

// maxCellWidth bounds the text and context columns of the summary.
const maxCellWidth = 40

// Row is one line of the summary table.
type Row struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	EntityType string  `json:"entity_type"`
	Located    bool    `json:"located"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Score      float64 `json:"score"`
	Context    string  `json:"context"`
}

// Rows describes every entity of set by its latest located span.
func Rows(set annotation.Validated) []Row {
	rows := make([]Row, 0, len(set.Entities()))
	for _, e := range set.Entities() {
		row := Row{ID: e.ID, Text: e.Text, EntityType: e.EntityType}
		if s, ok := e.Latest(); ok {
			row.Located = true
			row.Start, row.End = s.DestStart, s.DestEnd
			row.Score = s.Score
			row.Context = s.Context
		}
		rows = append(rows, row)
	}
	return rows
}

// Summary writes a fixed-width table with one row per entity. Entities that
// were never located show "-" for position and score.
func Summary(w io.Writer, set annotation.Validated) error {
	const format = "%-6s %-*s %-12s %6s %6s %6s  %s\n"

	if _, err := fmt.Fprintf(w, format, "ID", maxCellWidth, "TEXT", "ENTITY TYPE", "START", "END", "SCORE", "CONTEXT"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, format, "--", maxCellWidth, "----", "-----------", "-----", "---", "-----", "-------"); err != nil {
		return err
	}

	for _, r := range Rows(set) {
		start, end, score := "-", "-", "-"
		if r.Located {
			start = fmt.Sprint(r.Start)
			end = fmt.Sprint(r.End)
			score = fmt.Sprintf("%.1f", r.Score)
		}
		_, err := fmt.Fprintf(w, format, r.ID, maxCellWidth, truncate(r.Text), r.EntityType, start, end, score, truncate(r.Context))
		if err != nil {
			return err
		}
	}
	return nil
}

// truncate shortens s to maxCellWidth characters and flattens line breaks.
func truncate(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
	runes := []rune(s)
	if len(runes) <= maxCellWidth {
		return s
	}
	return string(runes[:maxCellWidth-1]) + "…"
}
