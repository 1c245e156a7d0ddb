package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	duckDuckGoEndpoint = "https://api.duckduckgo.com/"
	searchTimeout      = 10 * time.Second
	maxRelatedTopics   = 3
)

// WebSearch queries the DuckDuckGo instant answer API. It needs no API key.
type WebSearch struct {
	client   *http.Client
	endpoint string
}

// NewWebSearch shares client's transport but always bounds a lookup by the
// search timeout. A nil client means the default transport.
func NewWebSearch(client *http.Client) *WebSearch {
	c := &http.Client{}
	if client != nil {
		cp := *client
		c = &cp
	}
	c.Timeout = searchTimeout
	return &WebSearch{client: c, endpoint: duckDuckGoEndpoint}
}

func (s *WebSearch) Name() string { return "web_search" }

func (s *WebSearch) Description() string {
	return "Search the web for current information on any topic. Returns a short summary, its source and related topics."
}

type instantAnswer struct {
	Abstract      string `json:"Abstract"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// Run returns a short digest of the answer, or a "Search failed:" message.
func (s *WebSearch) Run(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	ans, err := s.lookup(ctx, query)
	if err != nil {
		return "Search failed: " + err.Error()
	}

	var lines []string
	if ans.Abstract != "" {
		lines = append(lines, "Summary: "+ans.Abstract)
	}
	if ans.AbstractURL != "" {
		lines = append(lines, "Source: "+ans.AbstractURL)
	}
	if len(ans.RelatedTopics) > 0 {
		lines = append(lines, "\nRelated Topics:")
		topics := ans.RelatedTopics
		if len(topics) > maxRelatedTopics {
			topics = topics[:maxRelatedTopics]
		}
		for _, t := range topics {
			if t.Text != "" {
				lines = append(lines, "- "+t.Text)
			}
		}
	}

	if len(lines) == 0 {
		return "No search results found."
	}
	return strings.Join(lines, "\n")
}

func (s *WebSearch) lookup(ctx context.Context, query string) (*instantAnswer, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var ans instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&ans); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &ans, nil
}
