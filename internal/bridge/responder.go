// Package bridge exposes the meeting agent to an external agent network over
// HTTP and websockets.
package bridge

import (
	"context"
	"errors"
	"strings"

	"twin/internal/agent"
)

var ErrEmptyMessage = errors.New("message is empty")

type Runner interface {
	Run(ctx context.Context, task *agent.Task) (string, error)
}

// Responder answers inbound messages in the persona's voice. It keeps no
// state between calls.
type Responder struct {
	agent  *agent.Agent
	runner Runner
}

func NewResponder(a *agent.Agent, r Runner) *Responder {
	return &Responder{agent: a, runner: r}
}

func (r *Responder) Respond(ctx context.Context, message string, history History) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	out, err := r.runner.Run(ctx, agent.Reply(r.agent, message, history))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
