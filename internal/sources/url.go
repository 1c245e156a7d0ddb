package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the fetch timeout for HTTP clients handed to the adapters.
const DefaultTimeout = 20 * time.Second

const (
	maxPageBytes = 8 << 20

	agentUA   = "twin/1.0 (+meeting notes reader)"
	browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// URLReader fetches one exact URL and returns its readable text.
type URLReader struct {
	client *http.Client
}

// NewURLReader uses client for both fetch attempts; nil means a plain client
// with a 20s timeout.
func NewURLReader(client *http.Client) *URLReader {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &URLReader{client: client}
}

func (r *URLReader) Name() string { return "url_reader" }

func (r *URLReader) Description() string {
	return "Fetch a single exact URL and return readable text. No generic search."
}

// Run tries structured extraction first and falls back to the raw response
// body fetched with a browser User-Agent. Both failing yields "".
func (r *URLReader) Run(ctx context.Context, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		log.Debug("Rejected url", "url", rawURL)
		return ""
	}

	if body, ctype, err := r.get(ctx, u.String(), agentUA); err == nil {
		if text := readableText(body, ctype); text != "" {
			return text
		}
	} else {
		log.Debug("Structured fetch failed", "url", rawURL, "err", err)
	}

	body, _, err := r.get(ctx, u.String(), browserUA)
	if err != nil {
		log.Debug("Raw fetch failed", "url", rawURL, "err", err)
		return ""
	}
	if !utf8.Valid(body) {
		return ""
	}
	return strings.TrimSpace(string(body))
}

func (r *URLReader) get(ctx context.Context, target, ua string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", ua)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// readableText pulls headings, paragraphs and list items out of an HTML page
// in document order. Pages with no body content produce "".
func readableText(body []byte, ctype string) string {
	if ctype != "" && !strings.Contains(ctype, "html") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside, iframe, noscript, form").Remove()

	var (
		b      strings.Builder
		seen   = make(map[string]bool)
		blocks int
	)

	if title := collapse(doc.Find("title").First().Text()); title != "" {
		b.WriteString("# " + title + "\n\n")
		seen[title] = true
	}

	doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		text := collapse(s.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		blocks++

		tag := goquery.NodeName(s)
		switch {
		case len(tag) == 2 && tag[0] == 'h':
			b.WriteString(strings.Repeat("#", int(tag[1]-'0')) + " " + text + "\n\n")
		case tag == "li":
			b.WriteString("- " + text + "\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})

	if blocks == 0 {
		return ""
	}
	return strings.TrimSpace(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
