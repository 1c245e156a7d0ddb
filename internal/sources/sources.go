// Package sources turns user-supplied locators (URLs, PDF paths, pasted text)
// into plain text. Adapters never fail loudly: anything that cannot be read
// becomes an empty string so callers treat "no text" the same way regardless
// of the cause.
package sources

import (
	"context"
	"net/http"
)

type Kind string

const (
	KindURL   Kind = "url"
	KindPDF   Kind = "pdf"
	KindPaste Kind = "paste"
)

// Text is the plain text extracted from one input.
type Text struct {
	Kind    Kind
	Content string
}

func (t Text) Empty() bool { return t.Content == "" }

// Set bundles the three meeting adapters behind one dispatch point.
type Set struct {
	URL   *URLReader
	PDF   *PDFReader
	Paste Paste
}

func NewSet(client *http.Client) *Set {
	return &Set{
		URL: NewURLReader(client),
		PDF: NewPDFReader(),
	}
}

// Extract runs the adapter for kind. Unknown kinds yield empty text.
func (s *Set) Extract(ctx context.Context, kind Kind, locator string) Text {
	out := Text{Kind: kind}
	switch kind {
	case KindURL:
		out.Content = s.URL.Run(ctx, locator)
	case KindPDF:
		out.Content = s.PDF.Run(ctx, locator)
	case KindPaste:
		out.Content = s.Paste.Run(ctx, locator)
	}
	return out
}
