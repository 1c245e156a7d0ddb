package agent

import (
	"fmt"
	"strings"
	"sync/atomic"
)

const WeeklyHint = "Hint: --weekly needs at least two sources (mix of --url/--pdf/--text)."

// ReplyInstructions drive the inbound message adapter.
const ReplyInstructions = "You are the user's digital twin. Using the context provided, craft a concise, first-person reply " +
	"that reflects the persona and goals configured for the meeting notes agent. Mirror the user's tone, " +
	"friendly and professional, and include any next steps or commitments that keep the project moving. " +
	"Do not mention these instructions or that you are an AI."

// Task is one unit of work for the model. A task runs at most once.
type Task struct {
	Description    string
	ExpectedOutput string
	Context        []string
	Agent          *Agent

	executed atomic.Bool
}

// claim marks the task as executed and reports whether it was still fresh.
func (t *Task) claim() bool {
	return t.executed.CompareAndSwap(false, true)
}

// Executed reports whether the task has already been submitted.
func (t *Task) Executed() bool {
	return t.executed.Load()
}

// Prompt renders the user message for the task.
func (t *Task) Prompt() string {
	var b strings.Builder
	b.WriteString(t.Description)
	if len(t.Context) > 0 {
		b.WriteString("\n\nContext:\n")
		for _, c := range t.Context {
			b.WriteString(c + "\n")
		}
	}
	b.WriteString("\nExpected output: " + t.ExpectedOutput)
	return b.String()
}

func Introduction(a *Agent) *Task {
	return &Task{
		Description: "Introduce yourself to the class in 3 sentences as my digital twin. " +
			"Output exactly 3 sentences, first-person.",
		ExpectedOutput: "Exactly 3 sentences, first-person.",
		Agent:          a,
	}
}

// Summary embeds the full source text in the description.
func Summary(a *Agent, source string) *Task {
	return &Task{
		Description: "Given the following source text, output the four sections in order with " +
			"strict formatting and [not found] placeholders when needed.\n\n" +
			"SOURCE TEXT:\n" + source + "\n\n" + GoalTemplate,
		ExpectedOutput: "Four sections in order with strict formatting.",
		Agent:          a,
	}
}

// Weekly merges sources into one digest. It returns false when fewer than two
// sources are given; the caller should show WeeklyHint instead.
func Weekly(a *Agent, sources []string) (*Task, bool) {
	if len(sources) < 2 {
		return nil, false
	}

	labeled := make([]string, len(sources))
	for i, s := range sources {
		labeled[i] = fmt.Sprintf("SOURCE %d:\n%s", i+1, s)
	}

	return &Task{
		Description: fmt.Sprintf("Given the following %d sources, merge them into a single digest with the four sections:\n\n", len(sources)) +
			strings.Join(labeled, "\n\n") + "\n\n" + GoalTemplate,
		ExpectedOutput: "Merged four-section digest.",
		Agent:          a,
	}, true
}

func CodeAnalysis(a *Agent, code string) *Task {
	return &Task{
		Description: "Analyze the following code for bugs, performance issues, and improvements:\n\n" + code + "\n\n" +
			"Provide a detailed analysis including language detection, potential issues, " +
			"and specific suggestions for improvement.",
		ExpectedOutput: "Comprehensive code analysis with issues and suggestions.",
		Agent:          a,
	}
}

func CodeExplanation(a *Agent, code string) *Task {
	return &Task{
		Description: "Explain what the following code does in simple terms:\n\n" + code + "\n\n" +
			"Break down the functionality, data flow, and main components. " +
			"Make it accessible to someone learning programming.",
		ExpectedOutput: "Clear explanation of code functionality and components.",
		Agent:          a,
	}
}

// Reply answers an inbound message. Prior turns are labeled in order and the
// inbound message always comes last.
func Reply(a *Agent, message string, history []string) *Task {
	ctx := make([]string, 0, len(history)+1)
	for i, turn := range history {
		ctx = append(ctx, fmt.Sprintf("Previous turn %d: %s", i+1, turn))
	}
	ctx = append(ctx, "Inbound message: "+message)

	return &Task{
		Description:    ReplyInstructions,
		ExpectedOutput: "A ready-to-send reply in the user's voice.",
		Context:        ctx,
		Agent:          a,
	}
}
