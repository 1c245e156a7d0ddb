package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestSearch(t *testing.T, h http.HandlerFunc) *WebSearch {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	s := NewWebSearch(srv.Client())
	s.endpoint = srv.URL + "/"
	return s
}

func TestWebSearchFormatsAnswer(t *testing.T) {
	s := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{
			"Abstract": "Go is a programming language.",
			"AbstractURL": "https://go.dev",
			"RelatedTopics": [
				{"Text": "Goroutines"},
				{"Name": "group", "Topics": []},
				{"Text": "Channels"},
				{"Text": "Never shown"}
			]
		}`))
	})

	got := s.Run(context.Background(), "golang")

	want := "Summary: Go is a programming language.\n" +
		"Source: https://go.dev\n" +
		"\nRelated Topics:\n" +
		"- Goroutines\n" +
		"- Channels"
	assert.Equal(t, want, got)
}

func TestWebSearchNoResults(t *testing.T) {
	s := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Abstract": "", "RelatedTopics": []}`))
	})
	assert.Equal(t, "No search results found.", s.Run(context.Background(), "zzz"))
}

func TestWebSearchFailure(t *testing.T) {
	s := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.Equal(t, "Search failed: HTTP 500", s.Run(context.Background(), "anything"))
	assert.Empty(t, s.Run(context.Background(), "  "))
}

func TestWebSearchUsesItsOwnTimeout(t *testing.T) {
	fetch := &http.Client{Timeout: DefaultTimeout}

	s := NewWebSearch(fetch)
	assert.Equal(t, searchTimeout, s.client.Timeout)
	assert.Equal(t, 10*time.Second, s.client.Timeout)
	assert.Equal(t, DefaultTimeout, fetch.Timeout)

	assert.Equal(t, searchTimeout, NewWebSearch(nil).client.Timeout)
}
