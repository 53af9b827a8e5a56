package overlay

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/entities"
)

// InitRoutes initializes the overlay bridge routes.
func InitRoutes(e *echo.Echo, hub *Hub, conv *entities.Conversation, logger *zap.Logger) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"service":  "goatbot-overlay",
			"overlays": hub.ClientCount(),
		})
	})

	// Conversation snapshot for overlays that connect mid-session.
	e.GET("/messages", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"messages": conv.Messages(),
		})
	})

	// WebSocket endpoint
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(hub, c, logger)
	})
}
