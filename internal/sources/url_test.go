package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>Sprint 12 review</title><script>var x = 1;</script></head>
<body>
<nav>Home | About</nav>
<h1>Decisions</h1>
<p>We will ship the  ingestion  service on Friday.</p>
<ul><li>Ana owns rollout</li><li>Mihai owns dashboards</li></ul>
<footer>copyright</footer>
</body></html>`

func TestURLReaderExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	got := NewURLReader(srv.Client()).Run(context.Background(), srv.URL)

	assert.Contains(t, got, "# Sprint 12 review")
	assert.Contains(t, got, "# Decisions")
	assert.Contains(t, got, "We will ship the ingestion service on Friday.")
	assert.Contains(t, got, "- Ana owns rollout")
	assert.NotContains(t, got, "var x")
	assert.NotContains(t, got, "Home | About")
	assert.NotContains(t, got, "copyright")
}

func TestURLReaderFallsBackToRawBody(t *testing.T) {
	var (
		mu     sync.Mutex
		agents []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.UserAgent())
		mu.Unlock()
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("  plain meeting notes \n"))
	}))
	defer srv.Close()

	got := NewURLReader(srv.Client()).Run(context.Background(), srv.URL)

	assert.Equal(t, "plain meeting notes", got)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, agents, 2)
	assert.Equal(t, browserUA, agents[1])
}

func TestURLReaderUnreadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := NewURLReader(srv.Client())
	for _, u := range []string{"", "not a url", "ftp://example.com/file", srv.URL + "/missing", "http://127.0.0.1:1/"} {
		assert.Empty(t, r.Run(context.Background(), u), u)
	}
}

func TestReadableTextNeedsBody(t *testing.T) {
	assert.Empty(t, readableText([]byte("<html><head><title>Only</title></head><body></body></html>"), "text/html"))
	assert.Empty(t, readableText([]byte(`{"a":1}`), "application/json"))
}
