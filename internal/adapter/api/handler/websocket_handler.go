package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"chatdash/internal/adapter/api/middleware"
	ws "chatdash/internal/infrastructure/websocket"
	"chatdash/pkg/errors"
	"chatdash/pkg/logger"
	"chatdash/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
}

// NewWebSocketHandler builds the handler. An empty allowedOrigins accepts any origin.
func NewWebSocketHandler(wsManager *ws.Manager, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades the request and serves the live dashboard session
// of the signed-in user until the connection closes.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade for %s failed: %v", user.ID, err)
		return nil
	}

	if err := h.wsManager.Serve(c.Request().Context(), conn, user); err != nil {
		logger.Error("WebSocket session for %s failed: %v", user.ID, err)
		conn.WriteMessage(gorillaws.CloseMessage, gorillaws.FormatCloseMessage(gorillaws.CloseInternalServerErr, "session unavailable"))
		conn.Close()
	}
	return nil
}
