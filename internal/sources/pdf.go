package sources

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts text from a local PDF file.
type PDFReader struct{}

func NewPDFReader() *PDFReader { return &PDFReader{} }

func (r *PDFReader) Name() string { return "pdf_reader" }

func (r *PDFReader) Description() string {
	return "Extract text content from a local PDF file path."
}

// Run concatenates the text of every page that extracts cleanly.
func (r *PDFReader) Run(_ context.Context, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	pages, err := readPages(path)
	if err != nil {
		log.Debug("PDF extraction failed", "path", path, "err", err)
		return ""
	}

	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func readPages(path string) (pages []string, err error) {
	// the parser panics on some malformed files
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser: %v", rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		text, ok := pageText(reader, i)
		if !ok {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pageText(reader *pdf.Reader, n int) (text string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Debug("Skipping PDF page", "page", n, "err", rec)
			ok = false
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return "", false
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		log.Debug("Skipping PDF page", "page", n, "err", err)
		return "", false
	}
	return text, true
}
