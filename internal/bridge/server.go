package bridge

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"
)

// Server serves the responder over HTTP. The agent side is the /ws endpoint;
// the API side is /api/send. Both sides answer /api/health.
type Server struct {
	responder *Responder
	agentID   string
	started   time.Time
	upgrader  ws.Upgrader
}

func NewServer(r *Responder, agentID string) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		responder: r,
		agentID:   agentID,
		started:   time.Now(),
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler serves every route on one listener.
func (s *Server) Handler() http.Handler {
	return s.engine(true, true)
}

// AgentHandler serves the websocket side only.
func (s *Server) AgentHandler() http.Handler {
	return s.engine(true, false)
}

// APIHandler serves the HTTP API only.
func (s *Server) APIHandler() http.Handler {
	return s.engine(false, true)
}

func (s *Server) engine(agent, api bool) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), requestLogger())

	group := e.Group("/api")
	group.GET("/health", s.handleHealth)
	if api {
		group.POST("/send", s.handleSend)
	}
	if agent {
		e.GET("/ws", s.handleWebSocket)
	}
	return e
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"agent_id": s.agentID,
		"uptime":   time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSend(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	reply, err := s.responder.Respond(c.Request.Context(), req.Message, req.History)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ErrEmptyMessage) {
			status = http.StatusBadRequest
		}
		log.Error("Failed to answer message", "err", err)
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, sendResponse{Response: reply, AgentID: s.agentID})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	log.Info("Agent connected", "remote", c.Request.RemoteAddr)

	for {
		var in Message
		if err := conn.ReadJSON(&in); err != nil {
			if !isClosed(err) {
				log.Warn("Failed to read frame", "err", err)
			}
			return
		}

		out := s.answer(ctx, in)
		if err := conn.WriteJSON(out); err != nil {
			log.Warn("Failed to write frame", "err", err)
			return
		}
	}
}

func (s *Server) answer(ctx context.Context, in Message) Message {
	out := Message{From: s.agentID, To: in.From}

	if in.Kind != KindMessage && in.Kind != "" {
		out.Kind = KindError
		out.Content = fmt.Sprintf("unsupported kind %q", in.Kind)
		return out
	}

	reply, err := s.responder.Respond(ctx, in.Content, in.History)
	if err != nil {
		log.Error("Failed to answer frame", "from", in.From, "err", err)
		out.Kind = KindError
		out.Content = err.Error()
		return out
	}

	out.Kind = KindReply
	out.Content = reply
	return out
}

func isClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
