package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one chat turn. Raw carries the provider's own representation of
// an assistant turn so it can be replayed verbatim.
type Message struct {
	Role       Role
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
	Raw        any
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSpec advertises a tool to the model. Every tool takes one string input.
type ToolSpec struct {
	Name        string
	Description string
}

type Completion struct {
	Content   string
	ToolCalls []ToolCall
	Raw       any
}

// Completer is the hosted language model.
type Completer interface {
	Complete(ctx context.Context, msgs []Message, tools []ToolSpec) (Completion, error)
}

var (
	ErrTaskExecuted  = errors.New("task already executed")
	ErrNoAgent       = errors.New("task has no agent")
	ErrEmptyResponse = errors.New("empty model response")
)

const defaultToolRounds = 4

// Runner submits tasks to the model and blocks until the answer is back.
type Runner struct {
	llm        Completer
	toolRounds int
}

func NewRunner(llm Completer) *Runner {
	return &Runner{llm: llm, toolRounds: defaultToolRounds}
}

// Run executes task once. Tool calls requested by the model are served from
// the task agent's tools; after the round limit the model must answer plainly.
func (r *Runner) Run(ctx context.Context, task *Task) (string, error) {
	if task.Agent == nil {
		return "", ErrNoAgent
	}
	if !task.claim() {
		return "", ErrTaskExecuted
	}

	msgs := []Message{
		{Role: RoleSystem, Content: task.Agent.SystemPrompt()},
		{Role: RoleUser, Content: task.Prompt()},
	}

	specs := make([]ToolSpec, 0, len(task.Agent.Tools))
	for _, t := range task.Agent.Tools {
		specs = append(specs, ToolSpec{Name: t.Name(), Description: t.Description()})
	}

	for round := 0; ; round++ {
		tools := specs
		if round >= r.toolRounds {
			tools = nil
		}

		c, err := r.llm.Complete(ctx, msgs, tools)
		if err != nil {
			return "", fmt.Errorf("%s: %w", task.Agent.Role, err)
		}

		if len(c.ToolCalls) == 0 || tools == nil {
			out := strings.TrimSpace(c.Content)
			if out == "" {
				return "", ErrEmptyResponse
			}
			return out, nil
		}

		msgs = append(msgs, Message{
			Role:      RoleAssistant,
			Content:   c.Content,
			ToolCalls: c.ToolCalls,
			Raw:       c.Raw,
		})

		for _, call := range c.ToolCalls {
			log.Debug("Tool call", "tool", call.Name, "round", round)
			msgs = append(msgs, Message{
				Role:       RoleTool,
				ToolCallID: call.ID,
				Content:    r.callTool(ctx, task.Agent, call),
			})
		}
	}
}

func (r *Runner) callTool(ctx context.Context, a *Agent, call ToolCall) string {
	tool, ok := a.Tool(call.Name)
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", call.Name)
	}

	out := tool.Run(ctx, ToolInput(call.Arguments))
	if out == "" {
		return "[no output]"
	}
	return out
}

// ToolInput extracts the "input" argument of a tool call. Arguments that are
// not a JSON object are passed through as-is.
func ToolInput(arguments string) string {
	var args struct {
		Input string `json:"input"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return arguments
	}
	return args.Input
}
