package bridge

import (
	"context"
	"fmt"
	log "log/slog"

	ws "github.com/gorilla/websocket"
)

// Client is a websocket peer of the bridge.
type Client struct {
	conn *ws.Conn
	name string
}

func Dial(ctx context.Context, url, name string) (*Client, error) {
	conn, _, err := ws.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	log.Debug("Connected to bridge", "url", url)
	return &Client{conn: conn, name: name}, nil
}

// Ask sends one message and waits for the answer frame. An error frame from
// the bridge is returned as an error.
func (c *Client) Ask(ctx context.Context, content string, history []string) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetReadDeadline(deadline)
		c.conn.SetWriteDeadline(deadline)
	}

	err := c.conn.WriteJSON(Message{
		From:    c.name,
		Kind:    KindMessage,
		Content: content,
		History: history,
	})
	if err != nil {
		return "", fmt.Errorf("send: %w", err)
	}

	var reply Message
	if err := c.conn.ReadJSON(&reply); err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	if reply.Kind == KindError {
		return "", fmt.Errorf("bridge: %s", reply.Content)
	}
	return reply.Content, nil
}

func (c *Client) Close() error {
	msg := ws.FormatCloseMessage(ws.CloseNormalClosure, "")
	c.conn.WriteMessage(ws.CloseMessage, msg)
	return c.conn.Close()
}
