package sources

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Paste accepts raw text from the command line.
type Paste struct{}

func (Paste) Name() string { return "paste_tool" }

func (Paste) Description() string {
	return "Accept raw text provided on the CLI and return it."
}

// Run returns the trimmed input, or "" when it is not valid UTF-8.
func (Paste) Run(_ context.Context, text string) string {
	if !utf8.ValidString(text) {
		return ""
	}
	return strings.TrimSpace(text)
}
