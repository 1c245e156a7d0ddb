package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twin/internal/agent"
)

func TestCompleteSendsMessagesAndTools(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "test-model",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "url_reader", "arguments": "{\"input\":\"https://a\"}"}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "secret", BaseURL: srv.URL + "/", Model: "test-model", HTTPClient: srv.Client()})

	got, err := c.Complete(context.Background(), []agent.Message{
		{Role: agent.RoleSystem, Content: "sys"},
		{Role: agent.RoleUser, Content: "hello"},
	}, []agent.ToolSpec{{Name: "url_reader", Description: "read"}})
	require.NoError(t, err)

	require.Len(t, got.ToolCalls, 1)
	assert.Equal(t, agent.ToolCall{ID: "call_1", Name: "url_reader", Arguments: `{"input":"https://a"}`}, got.ToolCalls[0])
	assert.NotNil(t, got.Raw)

	assert.Equal(t, "test-model", body["model"])
	msgs, _ := body["messages"].([]any)
	assert.Len(t, msgs, 2)
	tools, _ := body["tools"].([]any)
	assert.Len(t, tools, 1)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL + "/", Model: "m", HTTPClient: srv.Client()})
	_, err := c.Complete(context.Background(), []agent.Message{{Role: agent.RoleUser, Content: "hi"}}, nil)
	assert.ErrorContains(t, err, "no choices")
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"auth"}}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL + "/", Model: "m", HTTPClient: srv.Client()})
	_, err := c.Complete(context.Background(), []agent.Message{{Role: agent.RoleUser, Content: "hi"}}, nil)
	assert.ErrorContains(t, err, "chat completion")
}
