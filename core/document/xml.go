package document

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/SpanRelocator/core/errors"
)

// DefaultXPath selects the whole document element.
const DefaultXPath = "/*"

// ExtractXML parses data as XML and returns the text content of every node
// matched by expr, joined by sep. An empty expr selects the root element.
func ExtractXML(data []byte, expr, sep string) (string, error) {
	if expr == "" {
		expr = DefaultXPath
	}
	if _, err := xpath.Compile(expr); err != nil {
		return "", errors.NewParse("XPath", "", err.Error())
	}

	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return "", errors.NewParse("XML", "", err.Error())
	}

	nodes, err := xmlquery.QueryAll(root, expr)
	if err != nil {
		return "", errors.NewParse("XPath", "", err.Error())
	}
	if len(nodes) == 0 {
		return "", errors.Wrapf(errors.ErrNotFound, "xpath %q matched no nodes", expr)
	}

	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.InnerText()
	}
	return strings.Join(parts, sep), nil
}
