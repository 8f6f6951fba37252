package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"chatdash/internal/infrastructure/websocket"
)

type HealthHandler struct {
	wsManager   *websocket.Manager
	storeDriver string
}

var healthHandler *HealthHandler

func NewHealthHandler(wsManager *websocket.Manager, storeDriver string) *HealthHandler {
	return &HealthHandler{
		wsManager:   wsManager,
		storeDriver: storeDriver,
	}
}

func SetupHealthHandler(wsManager *websocket.Manager, storeDriver string) {
	healthHandler = NewHealthHandler(wsManager, storeDriver)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status": "ok",
		"store":  h.storeDriver,
		"time":   time.Now().Format(time.RFC3339),
	}
	if h.wsManager != nil {
		body["connections"] = h.wsManager.ConnectedClients()
	}
	return c.JSON(http.StatusOK, body)
}
