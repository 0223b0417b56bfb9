package server

import (
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	sessionService    service.SessionService
	sessionController *controller.SessionController
	upgrader          websocket.Upgrader
	engine            *gin.Engine
}

func NewServer(sessionService service.SessionService, sessionController *controller.SessionController) *Server {
	s := &Server{
		sessionService:    sessionService,
		sessionController: sessionController,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine = s.routes()
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	play := r.Group("/play")
	play.POST("/computer", s.sessionController.PlayComputer)
	play.POST("/friend", s.sessionController.PlayFriend)

	sessions := r.Group("/sessions/:id", s.sessionController.RequireTicket)
	sessions.GET("", s.sessionController.State)
	sessions.POST("/moves", s.sessionController.Move)
	sessions.POST("/reset", s.sessionController.Reset)
	sessions.DELETE("", s.sessionController.Leave)

	r.GET("/ws", s.handleWebSocket)
	return r
}

// handleWebSocket checks the ticket, upgrades the connection and attaches
// it to the session's room.
func (s *Server) handleWebSocket(c *gin.Context) {
	r := c.Request
	ctx, span := tracer.Start(r.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.method", r.Method),
	))
	defer span.End()

	sessionID := c.Query("session")
	span.SetAttributes(attribute.String("session.id", sessionID))

	if err := s.sessionService.Authorize(sessionID, c.Query("ticket")); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unauthorized view")
		response.AbortWithError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	rm, err := s.sessionService.Attach(ctx, sessionID, conn)
	if err != nil {
		slog.WarnContext(ctx, "Failed to attach view", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to attach view")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		_ = conn.Close()
		return
	}

	go rm.ReadPump(conn)
}
