package extractor

import (
	"fmt"
	"strings"

	"github.com/arvandy/skillpipe/internal/errs"
	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls the embedded text layer out of a PDF. Scanned
// (image-only) documents have no text layer and come back empty; OCR is a
// different collaborator and not handled here.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads every page's plain text and joins pages with blank lines.
// Any parser failure is reported as a layout-collaborator error.
func (e *PDFExtractor) Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &errs.CollaboratorError{Collaborator: "layout", Err: fmt.Errorf("open pdf %s: %w", path, err)}
	}
	defer f.Close()

	fonts := make(map[string]*pdf.Font)
	var builder strings.Builder

	totalPages := r.NumPage()
	for i := 1; i <= totalPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, err := p.GetPlainText(fonts)
		if err != nil {
			return "", &errs.CollaboratorError{Collaborator: "layout", Err: fmt.Errorf("read pdf page %d: %w", i, err)}
		}

		if trimmed := strings.TrimSpace(text); trimmed != "" {
			builder.WriteString(trimmed)
			builder.WriteString("\n\n")
		}
	}

	return builder.String(), nil
}
