package document

import (
	"os"
	"unicode/utf8"

	"github.com/FocuswithJustin/SpanRelocator/core/errors"
	"github.com/FocuswithJustin/SpanRelocator/internal/archive"
	"github.com/FocuswithJustin/SpanRelocator/internal/validation"
)

// LoadOptions controls how a document file is turned into text.
type LoadOptions struct {
	// XPath selects text nodes from XML sources. Setting it forces XML parsing
	// regardless of the file extension.
	XPath string

	// Separator joins the text of multiple XPath matches. Defaults to "\n".
	Separator string

	// MaxBytes caps the decompressed size (0 = validation.MaxFileSize).
	MaxBytes int64
}

// osOpen is a variable to allow testing of header read errors.
var osOpen = os.Open

// Load reads a document from path. Files ending in .xz or .gz are
// decompressed; .xml files (or any file when opts.XPath is set) are parsed as
// XML and reduced to their text content.
func Load(path string, opts LoadOptions) (*Document, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	kind, err := sniff(path)
	if err != nil {
		return nil, err
	}

	limit := opts.MaxBytes
	if limit <= 0 {
		limit = validation.MaxFileSize
	}
	data, err := archive.ReadAll(path, limit)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}

	inner := validation.DetectFileTypeFromExtension(archive.TrimCompressionSuffix(path))
	if kind == validation.FileTypeXML || inner == validation.FileTypeXML || opts.XPath != "" {
		sep := opts.Separator
		if sep == "" {
			sep = "\n"
		}
		text, err := ExtractXML(data, opts.XPath, sep)
		if err != nil {
			var perr *errors.ParseError
			if errors.As(err, &perr) {
				perr.Path = path
			}
			return nil, err
		}
		doc := New(text)
		doc.source = path
		return doc, nil
	}

	if !utf8.Valid(data) {
		return nil, errors.NewParse("text", path, "document is not valid UTF-8")
	}

	doc := New(string(data))
	doc.source = path
	return doc, nil
}

// sniff checks that the file's leading bytes agree with its extension.
// Content that neither the name nor the leading bytes identify is rejected
// as unsupported.
func sniff(path string) (validation.FileType, error) {
	f, err := osOpen(path)
	if err != nil {
		return validation.FileTypeUnknown, errors.NewIO("open", path, err)
	}
	defer f.Close()

	kind, err := validation.ValidateFileType(f, path)
	if err != nil {
		return validation.FileTypeUnknown, errors.NewIO("validate", path, err)
	}
	if kind == validation.FileTypeUnknown {
		return kind, errors.Wrap(errors.NewUnsupported("document content", "binary data without a recognised extension"), path)
	}
	return kind, nil
}
