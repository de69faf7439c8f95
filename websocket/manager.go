package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"bankline/models"
)

// Manager is the connection registry: every live client, its identity and
// its room memberships. All mutation goes through one lock so concurrent
// joins and disconnects cannot lose updates.
type Manager struct {
	mu          sync.RWMutex
	clients     map[*Client]bool
	rooms       map[models.Room]map[*Client]bool
	clientRooms map[*Client]map[models.Room]bool
}

type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewManager() *Manager {
	return &Manager{
		clients:     make(map[*Client]bool),
		rooms:       make(map[models.Room]map[*Client]bool),
		clientRooms: make(map[*Client]map[models.Room]bool),
	}
}

// Register adds a freshly upgraded connection. It starts with zero rooms;
// membership only comes from explicit Join calls.
func (m *Manager) Register(c *Client) {
	m.mu.Lock()
	m.clients[c] = true
	m.clientRooms[c] = make(map[models.Room]bool)
	total := len(m.clients)
	m.mu.Unlock()

	log.Printf("✅ WebSocket client registered. Total clients: %d", total)
}

// Unregister removes the connection and releases every room it joined.
// Calling it again for the same client is a no-op, so a disconnect can
// never double-release memberships.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	if !m.clients[c] {
		m.mu.Unlock()
		return
	}
	delete(m.clients, c)
	for room := range m.clientRooms[c] {
		delete(m.rooms[room], c)
		if len(m.rooms[room]) == 0 {
			delete(m.rooms, room)
		}
	}
	delete(m.clientRooms, c)
	total := len(m.clients)
	m.mu.Unlock()

	c.cancelTyping()
	c.shutdown()

	log.Printf("❌ WebSocket client unregistered. Total clients: %d", total)
}

// Join adds the client to a room. Joining a room twice is a no-op.
func (m *Manager) Join(c *Client, room models.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.clients[c] {
		return
	}
	if m.rooms[room] == nil {
		m.rooms[room] = make(map[*Client]bool)
	}
	m.rooms[room][c] = true
	m.clientRooms[c][room] = true
}

// Broadcast delivers an event to every connection joined to the room at
// call time. An empty room is a silent no-op; the message is already
// durable and a history fetch recovers any missed delivery.
func (m *Manager) Broadcast(room models.Room, event string, payload interface{}) {
	m.broadcast(room, nil, event, payload)
}

// BroadcastExcept is Broadcast minus one connection, used for typing
// indicators so the originator never sees its own state echoed.
func (m *Manager) BroadcastExcept(room models.Room, except *Client, event string, payload interface{}) {
	m.broadcast(room, except, event, payload)
}

func (m *Manager) broadcast(room models.Room, except *Client, event string, payload interface{}) {
	data, err := json.Marshal(envelope{Type: event, Payload: payload})
	if err != nil {
		log.Printf("❌ Error marshaling %s event: %v", event, err)
		return
	}

	m.mu.RLock()
	members := make([]*Client, 0, len(m.rooms[room]))
	for c := range m.rooms[room] {
		if c != except {
			members = append(members, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range members {
		select {
		case c.send <- data:
		default:
			// Slow client: drop the frame rather than block the fan-out.
			terr := &models.TransportError{Room: room, Err: errors.New("send buffer full")}
			log.Printf("❌ %v", terr)
		}
	}
}

// RoomSize returns the number of connections currently in the room.
func (m *Manager) RoomSize(room models.Room) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[room])
}

// InRoom reports whether the client is currently joined to the room.
func (m *Manager) InRoom(c *Client, room models.Room) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[room][c]
}

// ClientCount returns the number of live connections.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
