package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"

	"github.com/axisworks/axis/pkg/models"
)

// handshakeTimeout bounds how long a fresh socket may take to present its
// token before the server hangs up.
const handshakeTimeout = 10 * time.Second

// closeAuthFailure is the application close code for a failed token
// handshake, mirroring HTTP 401.
const closeAuthFailure = websocket.StatusCode(4401)

// wsTokenHandler handles POST /api/ws/token. The caller is already bearer
// authenticated; the minted token carries that authentication onto the
// WebSocket, where headers are awkward for browser clients.
func (s *Server) wsTokenHandler(c *echo.Context) error {
	var req WsTokenRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, models.CodeValidation, "malformed request body")
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	token, err := s.wsTokens.Issue(c.Request().Context(), sessionID, s.cfg.WSTokenTTL)
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, &WsTokenResponse{
		Token:     token,
		ExpiresIn: int(s.cfg.WSTokenTTL.Seconds()),
	})
}

// wsFirstFrame is the opening frame a client must send on /ws.
type wsFirstFrame struct {
	Token       string `json:"token"`
	LastEventID *int64 `json:"lastEventId,omitempty"`
}

// wsHandler handles GET /ws. The route itself is unauthenticated; the first
// frame must carry a one-time token from POST /api/ws/token, and nothing is
// sent before it checks out. HandleConnection blocks until the socket closes.
func (s *Server) wsHandler(c *echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}

	handshakeCtx, cancel := context.WithTimeout(c.Request().Context(), handshakeTimeout)
	_, data, err := conn.Read(handshakeCtx)
	cancel()
	if err != nil {
		_ = conn.Close(closeAuthFailure, "token handshake timed out")
		return nil
	}

	var frame wsFirstFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Token == "" {
		_ = conn.Close(closeAuthFailure, "first frame must carry a token")
		return nil
	}

	sessionID, err := s.wsTokens.Consume(c.Request().Context(), frame.Token)
	if err != nil {
		slog.Warn("WebSocket token rejected", "error", err)
		_ = conn.Close(closeAuthFailure, "invalid or expired token")
		return nil
	}
	slog.Debug("WebSocket authenticated", "session_id", sessionID)

	s.hub.HandleConnection(c.Request().Context(), conn, frame.LastEventID)
	return nil
}
