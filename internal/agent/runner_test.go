package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	replies []Completion
	err     error
	seen    [][]Message
	tools   [][]ToolSpec
}

func (s *scriptedLLM) Complete(_ context.Context, msgs []Message, tools []ToolSpec) (Completion, error) {
	s.seen = append(s.seen, append([]Message(nil), msgs...))
	s.tools = append(s.tools, tools)
	if s.err != nil {
		return Completion{}, s.err
	}
	c := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return c, nil
}

func TestRunnerPlainAnswer(t *testing.T) {
	llm := &scriptedLLM{replies: []Completion{{Content: "  I am the twin.  "}}}
	task := Introduction(MeetingAgent())

	out, err := NewRunner(llm).Run(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, "I am the twin.", out)

	require.Len(t, llm.seen, 1)
	msgs := llm.seen[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Meeting Notes Scribe")
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Introduce yourself")
}

func TestRunnerExecutesTaskOnce(t *testing.T) {
	llm := &scriptedLLM{replies: []Completion{{Content: "done"}}}
	r := NewRunner(llm)
	task := Introduction(MeetingAgent())

	_, err := r.Run(context.Background(), task)
	require.NoError(t, err)
	assert.True(t, task.Executed())

	_, err = r.Run(context.Background(), task)
	assert.ErrorIs(t, err, ErrTaskExecuted)
	assert.Len(t, llm.seen, 1)
}

func TestRunnerServesToolCalls(t *testing.T) {
	tool := &stubTool{name: "url_reader"}
	llm := &scriptedLLM{replies: []Completion{
		{ToolCalls: []ToolCall{
			{ID: "c1", Name: "url_reader", Arguments: `{"input":"https://notes"}`},
			{ID: "c2", Name: "missing", Arguments: `{}`},
		}, Raw: "provider-turn"},
		{Content: "digest"},
	}}

	out, err := NewRunner(llm).Run(context.Background(), Summary(MeetingAgent(tool), "x"))
	require.NoError(t, err)
	assert.Equal(t, "digest", out)
	assert.Equal(t, []string{"https://notes"}, tool.calls)

	require.Len(t, llm.seen, 2)
	second := llm.seen[1]
	require.Len(t, second, 5)
	assert.Equal(t, RoleAssistant, second[2].Role)
	assert.Equal(t, "provider-turn", second[2].Raw)
	assert.Equal(t, Message{Role: RoleTool, ToolCallID: "c1", Content: "result for https://notes"}, second[3])
	assert.Equal(t, RoleTool, second[4].Role)
	assert.Contains(t, second[4].Content, `unknown tool "missing"`)
	assert.Len(t, llm.tools[0], 1)
}

func TestRunnerStopsOfferingToolsAfterLimit(t *testing.T) {
	tool := &stubTool{name: "paste_tool"}
	loop := Completion{Content: "fallback answer", ToolCalls: []ToolCall{{ID: "c", Name: "paste_tool", Arguments: `{"input":"x"}`}}}
	llm := &scriptedLLM{replies: []Completion{loop}}

	r := NewRunner(llm)
	out, err := r.Run(context.Background(), Introduction(MeetingAgent(tool)))
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", out)
	require.Len(t, llm.tools, r.toolRounds+1)
	assert.Nil(t, llm.tools[r.toolRounds])
}

func TestRunnerErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewRunner(&scriptedLLM{err: boom}).Run(context.Background(), Introduction(MeetingAgent()))
	assert.ErrorIs(t, err, boom)

	_, err = NewRunner(&scriptedLLM{replies: []Completion{{Content: "  "}}}).Run(context.Background(), Introduction(MeetingAgent()))
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = NewRunner(&scriptedLLM{}).Run(context.Background(), &Task{Description: "x"})
	assert.ErrorIs(t, err, ErrNoAgent)
}
