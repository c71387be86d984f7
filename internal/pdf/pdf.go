// Package pdf extracts per-page text from quote PDFs.
package pdf

import (
	"context"
	"strings"
)

// Extractor returns the text of each page of a PDF, in page order.
// Pages that yield no text (scanned or blank) are omitted, so a fully
// scanned document returns an empty slice and no error.
type Extractor interface {
	ExtractPages(ctx context.Context, pdfPath string) ([]string, error)
}

// splitPages splits raw pdftotext output on form feeds and drops pages with
// no extractable text.
func splitPages(text string) []string {
	var pages []string
	for _, page := range strings.Split(text, "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}
