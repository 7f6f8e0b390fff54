package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	websocketManager "github.com/tablostudio/tablo-api/infrastructure/websocket"
	"github.com/tablostudio/tablo-api/pkg/logger"
	"github.com/tablostudio/tablo-api/pkg/utils"
)

type WebSocketHandler struct{}

func NewWebSocketHandler() *WebSocketHandler {
	return &WebSocketHandler{}
}

func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket registers the connection into the room of the project it
// watches. Admin screens join with ?project=<id> to receive conflict badge
// updates pushed after each arbitration.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	var partnerID uuid.UUID

	if partnerContext := c.Locals("partner"); partnerContext != nil {
		if partner, ok := partnerContext.(*utils.PartnerContext); ok {
			partnerID = partner.ID
		}
	}

	if partnerID == uuid.Nil {
		partnerID = uuid.New()
		logger.WebSocket("anonymous_connected", "Anonymous watcher connected", map[string]interface{}{"client_id": partnerID.String()})
	} else {
		logger.WebSocket("partner_connected", "Partner connected", map[string]interface{}{"partner_id": partnerID.String()})
	}

	roomID := c.Query("project", "")

	websocketManager.Manager.RegisterClient(c, partnerID, roomID)

	defer func() {
		websocketManager.Manager.UnregisterClient(c)
	}()

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.WebSocketError("read_message", "WebSocket read error", err, map[string]interface{}{"client_id": partnerID.String()})
			break
		}

		websocketManager.HandleWebSocketMessage(c, messageType, message)
	}
}
