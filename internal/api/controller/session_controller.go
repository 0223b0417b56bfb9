package controller

import (
	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TicketHeader carries the session ticket on HTTP routes.
const TicketHeader = "Authorization"

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessionService service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// PlayComputer is the "play vs computer" entry route.
func (sc *SessionController) PlayComputer(c *gin.Context) {
	sc.play(c, session.ModeComputer)
}

// PlayFriend is the "play vs friend" entry route.
func (sc *SessionController) PlayFriend(c *gin.Context) {
	sc.play(c, session.ModeFriend)
}

func (sc *SessionController) play(c *gin.Context, mode session.Mode) {
	resp, err := sc.sessionService.Play(c.Request.Context(), mode)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.OK(c, resp)
}

// RequireTicket rejects requests whose ticket was not issued for the
// session named in the path.
func (sc *SessionController) RequireTicket(c *gin.Context) {
	raw := bearerToken(c.GetHeader(TicketHeader))
	if raw == "" {
		raw = c.Query("ticket")
	}
	if err := sc.sessionService.Authorize(c.Param("id"), raw); err != nil {
		response.AbortWithError(c, err)
		return
	}
	c.Next()
}

// State returns the session's current render state.
func (sc *SessionController) State(c *gin.Context) {
	state, err := sc.sessionService.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.OK(c, state)
}

// Move handles a cell tap. Refused taps still answer 200 with accepted=false.
func (sc *SessionController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := sc.sessionService.Move(c.Request.Context(), c.Param("id"), *req.Cell)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.OK(c, resp)
}

// Reset starts a new game in the same session.
func (sc *SessionController) Reset(c *gin.Context) {
	state, err := sc.sessionService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.OK(c, state)
}

// Leave tears the session down.
func (sc *SessionController) Leave(c *gin.Context) {
	if err := sc.sessionService.Leave(c.Request.Context(), c.Param("id")); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Session closed"})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
