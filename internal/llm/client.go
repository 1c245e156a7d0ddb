// Package llm talks to the hosted language model through an
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"twin/internal/agent"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client implements agent.Completer.
type Client struct {
	api   openai.Client
	model string
}

func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: cfg.Model,
	}
}

func (c *Client) Complete(ctx context.Context, msgs []agent.Message, tools []agent.ToolSpec) (agent.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Messages: toParams(msgs),
		Model:    openai.ChatModel(c.model),
	}
	if len(tools) > 0 {
		params.Tools = toolParams(tools)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return agent.Completion{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return agent.Completion{}, errors.New("no choices in response")
	}

	msg := resp.Choices[0].Message
	log.Debug("Completion", "model", resp.Model, "tool_calls", len(msg.ToolCalls), "finish", resp.Choices[0].FinishReason)

	out := agent.Completion{
		Content: msg.Content,
		Raw:     msg.ToParam(),
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, agent.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return out, nil
}

func toParams(msgs []agent.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case agent.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case agent.RoleAssistant:
			if raw, ok := m.Raw.(openai.ChatCompletionMessageParamUnion); ok {
				out = append(out, raw)
				continue
			}
			out = append(out, openai.AssistantMessage(m.Content))
		case agent.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func toolParams(tools []agent.ToolSpec) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"input": map[string]string{
						"type":        "string",
						"description": "The single input for the tool",
					},
				},
				"required": []string{"input"},
			},
		}))
	}
	return out
}
