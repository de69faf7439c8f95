package websocket

import (
	"time"

	"bankline/models"
)

// A typing=true state that receives no further events expires on its own
// after this quiet interval.
const typingExpiry = 3 * time.Second

type typingEvent struct {
	Identity string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// setTyping broadcasts the typing state to the room, excluding this
// connection, and restarts the expiry timer. Every new event cancels the
// previous timer; the generation counter keeps a late-firing timer from
// clobbering a newer state.
func (c *Client) setTyping(room models.Room, isTyping bool) {
	// Snapshot the identity here on the readPump goroutine. The timer
	// callback runs concurrently with later join events that may rewrite
	// the session token, so it must never read the client's fields.
	identity := c.identity()

	c.manager.BroadcastExcept(room, c, "typing", typingEvent{
		Identity: identity,
		IsTyping: isTyping,
	})

	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	c.typingGen++
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	if !isTyping {
		return
	}

	gen := c.typingGen
	c.typingRoom = room
	c.typingTimer = time.AfterFunc(c.typingExpiry, func() {
		c.expireTyping(gen, identity)
	})
}

func (c *Client) expireTyping(gen uint64, identity string) {
	c.typingMu.Lock()
	if gen != c.typingGen {
		c.typingMu.Unlock()
		return
	}
	room := c.typingRoom
	c.typingTimer = nil
	c.typingMu.Unlock()

	c.manager.BroadcastExcept(room, c, "typing", typingEvent{
		Identity: identity,
		IsTyping: false,
	})
}

// cancelTyping stops any pending expiry. Called once on disconnect.
func (c *Client) cancelTyping() {
	c.typingMu.Lock()
	defer c.typingMu.Unlock()

	c.typingGen++
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
}
