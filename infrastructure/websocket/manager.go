package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/tablostudio/tablo-api/pkg/logger"
)

// Client is one live dashboard connection, subscribed to a project room.
type Client struct {
	Conn      *websocket.Conn
	PartnerID uuid.UUID
	RoomID    string
}

// ConnectionManager tracks dashboard connections per project room so that
// arbitration outcomes can push fresh badge counts without polling.
type ConnectionManager struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*Client
	rooms   map[string]map[*websocket.Conn]bool
}

// Manager is the process-wide connection registry.
var Manager = NewConnectionManager()

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[*websocket.Conn]*Client),
		rooms:   make(map[string]map[*websocket.Conn]bool),
	}
}

func (m *ConnectionManager) RegisterClient(conn *websocket.Conn, partnerID uuid.UUID, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients[conn] = &Client{Conn: conn, PartnerID: partnerID, RoomID: roomID}
	if roomID != "" {
		if m.rooms[roomID] == nil {
			m.rooms[roomID] = make(map[*websocket.Conn]bool)
		}
		m.rooms[roomID][conn] = true
	}

	logger.WebSocket("client_registered", "Dashboard client registered", map[string]interface{}{
		"partner_id": partnerID.String(),
		"room":       roomID,
		"clients":    len(m.clients),
	})
}

func (m *ConnectionManager) UnregisterClient(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[conn]
	if !ok {
		return
	}
	delete(m.clients, conn)
	if client.RoomID != "" {
		delete(m.rooms[client.RoomID], conn)
		if len(m.rooms[client.RoomID]) == 0 {
			delete(m.rooms, client.RoomID)
		}
	}
}

// BroadcastToRoom sends a JSON event to every connection in a room. Failed
// writes are logged and the connection left for its read loop to reap.
func (m *ConnectionManager) BroadcastToRoom(roomID string, event string, payload interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		logger.WebSocketError("broadcast_marshal", "Failed to marshal broadcast payload", err, nil)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for conn := range m.rooms[roomID] {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			logger.WebSocketError("broadcast_write", "Failed to write to client", err, map[string]interface{}{"room": roomID})
		}
	}
}

// HandleWebSocketMessage answers client pings; everything else is ignored.
func HandleWebSocketMessage(conn *websocket.Conn, messageType int, message []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	if msg.Type == "ping" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`))
	}
}
