package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub manages WebSocket connections per interview. A candidate session
// connection and any interviewer observer connections for the same interview
// all receive the same broadcasts
type Hub struct {
	conns map[string]map[*Connection]bool // interviewID -> connections

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
}

// Connection represents one WebSocket connection
type Connection struct {
	InterviewID string
	Observer    bool // interviewer watching, never posts events
	Send        chan []byte
	Hub         *Hub
}

type broadcastMessage struct {
	interviewID string
	data        []byte
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.InterviewID] == nil {
				h.conns[conn.InterviewID] = make(map[*Connection]bool)
			}
			h.conns[conn.InterviewID][conn] = true
			log.Printf("Connection joined interview %s (observer=%v)", conn.InterviewID, conn.Observer)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.InterviewID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Connection left interview %s", conn.InterviewID)
				}
				if len(conns) == 0 {
					delete(h.conns, conn.InterviewID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.conns[msg.interviewID] {
				select {
				case conn.Send <- msg.data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// ConnCount returns the number of live connections for an interview
func (h *Hub) ConnCount(interviewID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[interviewID])
}

// BroadcastToInterview sends a message to every connection of an interview
// (implements service.Broadcaster)
func (h *Hub) BroadcastToInterview(interviewID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	raw, _ := json.Marshal(&Message{Type: msgType, Payload: data})
	h.broadcast <- &broadcastMessage{interviewID: interviewID, data: raw}
}

// DisconnectInterview closes every connection of an interview (implements
// service.Broadcaster)
func (h *Hub) DisconnectInterview(interviewID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns[interviewID] {
		close(conn.Send)
	}
	delete(h.conns, interviewID)
}

func (h *Hub) sendRaw(interviewID string, data []byte) {
	h.broadcast <- &broadcastMessage{interviewID: interviewID, data: data}
}
