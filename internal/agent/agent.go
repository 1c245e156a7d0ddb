// Package agent holds the persona-configured agents, the task templates they
// run, and the runner that submits a task to the hosted language model.
package agent

import (
	"context"
	"strings"
)

// Tool is a capability an agent may invoke while working on a task.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, input string) string
}

const PersonaBackstory = "You are a second-year Master's in Data Science student at Harvard University, " +
	"originally from Romania, with a B.S. in Computer Science & Mathematics from the " +
	"University of Richmond. You enjoy travel and extreme activities like scuba diving, " +
	"skiing, skydiving, and swimming with sharks. Your professional focus is ML infrastructure."

// GoalTemplate is the four-section digest contract.
const GoalTemplate = "1) TL;DR: exactly 3 bullets\n" +
	"2) Decisions: bullets\n" +
	"3) Risks/Blockers: bullets (consider reliability, latency, cost, rollout safety)\n" +
	"4) Next Steps: bullets with Owner: and Due: when present, else [not found]"

const Guardrails = "Tone: diplomatic, happy, respectful. Avoid repetition and unusual words. " +
	"Never use em dashes. Do not invent facts; if data is missing, write [not found]. " +
	"Refuse or escalate legal/finance, HR-sensitive, and security-sensitive topics."

// DigestTemplate is the literal digest skeleton printed when no source is given.
const DigestTemplate = "1) TL;DR:\n" +
	"- [example bullet]\n" +
	"- [example bullet]\n" +
	"- [example bullet]\n\n" +
	"2) Decisions:\n" +
	"- [not found]\n\n" +
	"3) Risks/Blockers:\n" +
	"- Reliability: [not found]\n" +
	"- Latency: [not found]\n" +
	"- Cost: [not found]\n" +
	"- Rollout safety: [not found]\n\n" +
	"4) Next Steps:\n" +
	"- Task: [not found] | Owner: [not found] | Due: [not found]"

// Agent is the persona and capability set handed to the model. It is built
// once per invocation and never mutated afterwards.
type Agent struct {
	Role       string
	Goal       string
	Backstory  string
	Guardrails string
	Tools      []Tool
}

// MeetingAgent is the notes scribe. Callers attach the URL, PDF and paste
// adapters.
func MeetingAgent(tools ...Tool) *Agent {
	return &Agent{
		Role: "Meeting Notes Scribe",
		Goal: "Turn meeting inputs into concise, actionable notes for an engineer " +
			"who is a Harvard DS master's student from Romania with a CS/Math background.\n" +
			GoalTemplate,
		Backstory: "You compress technical context into clear decisions and next steps suitable for " +
			"class projects, research meetings, and infra reviews. You're practical and concise. " +
			PersonaBackstory,
		Guardrails: Guardrails,
		Tools:      tools,
	}
}

// CodingAgent is the reviewer. Callers attach code analysis, search and paste.
func CodingAgent(tools ...Tool) *Agent {
	return &Agent{
		Role: "Code Review Assistant",
		Goal: "Analyze code for bugs, performance issues, and suggest improvements. " +
			"Provide clear explanations of code functionality and best practices.",
		Backstory: "You're a skilled software engineer with expertise in Python, data science libraries, " +
			"and ML infrastructure. You have a keen eye for code quality, security issues, " +
			"and performance optimization. You communicate technical concepts clearly. " +
			PersonaBackstory,
		Guardrails: Guardrails,
		Tools:      tools,
	}
}

// Tool looks up an attached tool by name.
func (a *Agent) Tool(name string) (Tool, bool) {
	for _, t := range a.Tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// SystemPrompt renders the persona for the system message.
func (a *Agent) SystemPrompt() string {
	var b strings.Builder
	b.WriteString("You are " + a.Role + ".\n\n")
	b.WriteString("Your goal:\n" + a.Goal + "\n\n")
	b.WriteString("Background:\n" + a.Backstory + "\n")
	if a.Guardrails != "" {
		b.WriteString("\nRules:\n" + a.Guardrails + "\n")
	}
	if len(a.Tools) > 0 {
		b.WriteString("\nTools you may call when they help:\n")
		for _, t := range a.Tools {
			b.WriteString("- " + t.Name() + ": " + t.Description() + "\n")
		}
	}
	return b.String()
}
