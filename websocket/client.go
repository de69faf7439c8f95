package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"bankline/chat"
	"bankline/middleware"
	"bankline/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
)

// Client is one live connection bound to exactly one identity: an
// authenticated user, a propeneer, or an anonymous session.
type Client struct {
	manager    *Manager
	chatRouter *chat.Router
	conn       *websocket.Conn
	send       chan []byte
	done       chan struct{}
	closeOnce  sync.Once

	userID       string
	role         string
	sessionToken string

	typingMu     sync.Mutex
	typingTimer  *time.Timer
	typingRoom   models.Room
	typingGen    uint64
	typingExpiry time.Duration
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades the request and registers the connection. A bearer token
// in the query establishes an authenticated identity; a sessionId query
// parameter establishes an anonymous one. A connection with neither is
// allowed but stays roomless until a join names a session.
func Handler(manager *Manager, chatRouter *chat.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID, role string
		if token := r.URL.Query().Get("token"); token != "" {
			claims, err := middleware.VerifyToken(token)
			if err != nil {
				log.Printf("❌ WebSocket connection rejected: %v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			userID = claims.UserID
			role = claims.Role
		}
		sessionToken := r.URL.Query().Get("sessionId")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			manager:      manager,
			chatRouter:   chatRouter,
			conn:         conn,
			send:         make(chan []byte, 256),
			done:         make(chan struct{}),
			userID:       userID,
			role:         role,
			sessionToken: sessionToken,
			typingExpiry: typingExpiry,
		}

		manager.Register(client)

		client.sendEvent("connected", map[string]interface{}{
			"identity": client.identity(),
			"time":     time.Now().Unix(),
		})

		go client.writePump()
		go client.readPump()
	}
}

// identity is the addressable id of this connection: the user id when
// authenticated, otherwise the session token.
func (c *Client) identity() string {
	if c.userID != "" {
		return c.userID
	}
	return c.sessionToken
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) sendEvent(event string, payload interface{}) {
	data, err := json.Marshal(envelope{Type: event, Payload: payload})
	if err != nil {
		log.Printf("❌ Error marshaling %s event: %v", event, err)
		return
	}
	select {
	case c.send <- data:
	default:
		terr := &models.TransportError{Err: errors.New("send buffer full")}
		log.Printf("❌ %v", terr)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.manager.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket read error: %v", err)
			}
			break
		}

		var evt struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(message, &evt); err != nil {
			log.Printf("❌ WebSocket event unmarshal error: %v", err)
			continue
		}

		switch evt.Type {
		case "join":
			c.handleJoin(evt.Payload)
		case "sendMessage":
			c.handleSendMessage(evt.Payload)
		case "typing":
			c.handleTyping(evt.Payload)
		case "ping":
			c.sendEvent("pong", map[string]interface{}{"time": time.Now().Unix()})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleJoin(payload json.RawMessage) {
	var p struct {
		UserID    string `json:"userId"`
		SessionID string `json:"sessionId"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			c.sendError("validation", "malformed join payload")
			return
		}
	}

	// A verified identity wins over whatever the payload claims.
	userID := c.userID
	if userID == "" {
		userID = p.UserID
	}
	session := c.sessionToken
	if session == "" {
		session = p.SessionID
	}

	var room models.Room
	switch {
	case c.role == chat.RolePropeneer:
		room = models.AgentPool
	case userID != "":
		room = models.UserRoom(userID)
	case session != "":
		c.sessionToken = session
		room = models.AnonRoom(session)
	default:
		c.sendError("identity", "either a user id or a session id must be provided")
		return
	}

	c.manager.Join(c, room)
	log.Printf("Client %s joined room: %s", c.identity(), room)

	c.sendEvent("joined", map[string]interface{}{
		"status": "success",
		"room":   room,
	})
}

func (c *Client) handleSendMessage(payload json.RawMessage) {
	var p struct {
		SenderID   string `json:"senderId"`
		SessionID  string `json:"sessionId"`
		ReceiverID string `json:"receiverId"`
		ThreadID   string `json:"threadId"`
		Message    string `json:"message"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("validation", "malformed sendMessage payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creds := chat.Credentials{
		UserID:       c.userID,
		Role:         c.role,
		SessionToken: c.sessionToken,
	}
	req := chat.SendRequest{
		SenderID:     p.SenderID,
		SessionToken: p.SessionID,
		ReceiverID:   p.ReceiverID,
		ThreadID:     p.ThreadID,
		Content:      p.Message,
	}

	receipt, err := c.chatRouter.Send(ctx, creds, req)
	if err != nil {
		log.Printf("Message send error (%s): %v", c.identity(), err)
		c.sendError(errorCode(err), err.Error())
		return
	}

	c.sendEvent("ack", map[string]interface{}{
		"status":    "success",
		"messageId": receipt.MessageID,
		"threadId":  receipt.ThreadID,
		"isSupport": receipt.IsSupport,
		"timestamp": receipt.Timestamp,
	})
}

func (c *Client) handleTyping(payload json.RawMessage) {
	var p struct {
		Room     string `json:"room"`
		IsTyping bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(payload, &p); err != nil || p.Room == "" {
		return
	}
	c.setTyping(models.Room(p.Room), p.IsTyping)
}

func (c *Client) sendError(code, message string) {
	c.sendEvent("ack", map[string]interface{}{
		"status":  "error",
		"code":    code,
		"message": message,
	})
}

func errorCode(err error) string {
	var (
		validation *models.ValidationError
		identity   *models.IdentityError
		rateLimit  *models.RateLimitError
		notFound   *models.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &identity):
		return "identity"
	case errors.As(err, &rateLimit):
		return "rate_limit"
	case errors.As(err, &notFound):
		return "not_found"
	default:
		return "internal"
	}
}
