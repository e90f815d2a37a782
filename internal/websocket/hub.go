package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/storyvouch/api/internal/model"
)

// Client represents a WebSocket client
type Client struct {
	RecordingID string
	Conn        *websocket.Conn
	Send        chan []byte
}

// Hub maintains active WebSocket connections grouped by recording, so the
// pipeline workers can push stage transitions to whoever is watching that
// recording.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Broadcast messages to recording subscribers
	broadcast chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	RecordingID string
	Message     []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.RecordingID] == nil {
				h.clients[client.RecordingID] = make(map[*Client]bool)
			}
			h.clients[client.RecordingID][client] = true
			h.mu.Unlock()
			log.Printf("Client registered for recording %s", client.RecordingID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.RecordingID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.RecordingID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("Client unregistered from recording %s", client.RecordingID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.RecordingID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastStage sends a stage status change to all recording subscribers
func (h *Hub) BroadcastStage(recordingID string, stage model.PipelineStage, status string, progress int) {
	msg := model.WSStageMessage{
		Type:        model.WSMessageTypeStage,
		RecordingID: recordingID,
		Stage:       stage,
		Status:      status,
		Progress:    progress,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal stage message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		RecordingID: recordingID,
		Message:     data,
	}
}

// BroadcastComplete sends a completion message to all recording subscribers
func (h *Hub) BroadcastComplete(recordingID string, result interface{}) {
	msg := model.WSCompleteMessage{
		Type:        model.WSMessageTypeComplete,
		RecordingID: recordingID,
		Result:      result,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal complete message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		RecordingID: recordingID,
		Message:     data,
	}
}

// BroadcastError sends an error message to all recording subscribers
func (h *Hub) BroadcastError(recordingID string, code, message string) {
	msg := model.WSErrorMessage{
		Type:        model.WSMessageTypeError,
		RecordingID: recordingID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal error message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		RecordingID: recordingID,
		Message:     data,
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, recordingID string) {
	client := &Client{
		RecordingID: recordingID,
		Conn:        c,
		Send:        make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			client.Send <- data
		}
	}
}
