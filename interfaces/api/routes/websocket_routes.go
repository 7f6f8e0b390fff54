package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/tablostudio/tablo-api/interfaces/api/middleware"
	websocketHandler "github.com/tablostudio/tablo-api/interfaces/api/websocket"
	"github.com/tablostudio/tablo-api/pkg/config"
)

func SetupWebSocketRoutes(app *fiber.App, cfg *config.Config) {
	wsHandler := websocketHandler.NewWebSocketHandler()

	// WebSocket with optional authentication (supports query token for WS connections)
	app.Use("/ws", middleware.OptionalPartner(cfg.JWT.Secret), wsHandler.WebSocketUpgrade)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))
}
