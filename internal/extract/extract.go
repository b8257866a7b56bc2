// Package extract turns uploaded file bytes into plain text.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor implements domain.Extractor for PDF and plain-text files.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// Extract returns the concatenated text of the named file. PDF files are
// parsed page by page; anything else is treated as plain text.
func (e *Extractor) Extract(name string, data []byte) (string, error) {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return pdfText(data)
	}
	return string(data), nil
}

// pdfText concatenates the plain text of every page. A page that cannot be
// read contributes an empty string rather than failing the document; only
// an unreadable file is an error.
func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		// a nil font map makes the library resolve each page's own fonts,
		// so encoded text (Differences, Identity-H) decodes correctly
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
