package render

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/FocuswithJustin/SpanRelocator/core/annotation"
	"github.com/FocuswithJustin/SpanRelocator/core/compose"
	"github.com/FocuswithJustin/SpanRelocator/core/document"
	"github.com/FocuswithJustin/SpanRelocator/core/errors"
)

const stylesheet = `
body { font-family: sans-serif; }
.container { display: flex; font-family: monospace; line-height: 1.5; }
.line-numbers { padding: 0 8px; background-color: #f5f5f5; color: #666; text-align: right; user-select: none; }
.text { padding: 0 8px; white-space: pre-wrap; flex: 1; }
.highlight { border-radius: 2px; cursor: help; }
.highlight.stacked { outline: 1px dashed #666; }
footer { margin-top: 1em; color: #666; font-size: small; }
`

// HTMLOptions configures the highlighted view.
type HTMLOptions struct {
	Title string
}

// HTML writes a standalone page showing doc with the latest located span of
// every entity in set highlighted in its type's colour. A left gutter shows
// the character offset at which each line starts. Where spans of several
// types overlap, the highlight lists all of them.
func HTML(w io.Writer, doc *document.Document, set annotation.Validated, opts HTMLOptions) error {
	if doc == nil {
		return errors.NewInput("document", "must not be nil")
	}

	var spans []compose.Span[string]
	var types []string
	for _, e := range set.Entities() {
		types = append(types, e.EntityType)
		if s, ok := e.Latest(); ok {
			spans = append(spans, compose.Span[string]{Start: s.DestStart, End: s.DestEnd, Label: e.EntityType})
		}
	}
	segments, err := compose.Compose(doc.Len(), spans)
	if err != nil {
		return err
	}
	palette := NewPalette(types)

	title := opts.Title
	if title == "" {
		title = "Relocated annotations"
	}

	body := element(atom.Body, nil)
	body.AppendChild(textElement(atom.H1, nil, title))

	container := element(atom.Div, attrs("class", "container"))
	container.AppendChild(gutter(doc))
	container.AppendChild(highlighted(doc, segments, palette))
	body.AppendChild(container)

	footer := element(atom.Footer, nil)
	footer.AppendChild(textNode(strconv.Itoa(doc.Len()) + " characters, blake3 " + doc.Fingerprint()))
	body.AppendChild(footer)

	head := element(atom.Head, nil)
	head.AppendChild(element(atom.Meta, attrs("charset", "utf-8")))
	head.AppendChild(textElement(atom.Title, nil, title))
	head.AppendChild(textElement(atom.Style, nil, stylesheet))

	root := element(atom.Html, nil)
	root.AppendChild(head)
	root.AppendChild(body)

	page := &html.Node{Type: html.DocumentNode}
	page.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	page.AppendChild(root)

	if err := html.Render(w, page); err != nil {
		return errors.NewIO("write", "html", err)
	}
	return nil
}

// gutter lists the starting offset of every line.
func gutter(doc *document.Document) *html.Node {
	div := element(atom.Div, attrs("class", "line-numbers"))
	for _, start := range doc.LineStarts() {
		div.AppendChild(textElement(atom.Div, attrs("class", "line"), strconv.Itoa(start)))
	}
	return div
}

func highlighted(doc *document.Document, segments []compose.Segment[string], palette Palette) *html.Node {
	div := element(atom.Div, attrs("class", "text"))
	for _, seg := range segments {
		text := doc.Slice(seg.Start, seg.End)
		if len(seg.Labels) == 0 {
			div.AppendChild(textNode(text))
			continue
		}

		class := "highlight"
		if len(seg.Labels) > 1 {
			class += " stacked"
		}
		span := textElement(atom.Span, attrs(
			"class", class,
			"style", "background-color: "+palette.Color(seg.Labels[0])+";",
			"data-entity", strings.Join(seg.Labels, " "),
			"data-start", strconv.Itoa(seg.Start),
			"data-end", strconv.Itoa(seg.End),
			"title", "Entity Type: "+strings.Join(seg.Labels, ", "),
		), text)
		div.AppendChild(span)
	}
	return div
}

func element(a atom.Atom, attr []html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attr}
}

func textElement(a atom.Atom, attr []html.Attribute, text string) *html.Node {
	n := element(a, attr)
	n.AppendChild(textNode(text))
	return n
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// attrs builds attributes from key, value pairs.
func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}
