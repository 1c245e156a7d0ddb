package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindMessage Kind = "message"
	KindReply   Kind = "reply"
	KindError   Kind = "error"
)

// Message is one websocket frame exchanged with the agent network.
type Message struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Kind    Kind    `json:"kind"`
	Content string  `json:"content"`
	History History `json:"history,omitempty"`
}

// History is the prior conversation. On the wire it is either a single
// string or a list of strings.
type History []string

func (h *History) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		// Any string is one turn, even an empty one.
		*h = History{s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("history must be a string or a list of strings: %w", err)
	}
	*h = list
	return nil
}

type sendRequest struct {
	Message string  `json:"message" binding:"required"`
	History History `json:"conversation_history"`
}

type sendResponse struct {
	Response string `json:"response"`
	AgentID  string `json:"agent_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}
