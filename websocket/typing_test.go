package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"bankline/models"
)

func readTyping(t *testing.T, c *Client, timeout time.Duration) (typingEvent, bool) {
	t.Helper()
	evt, ok := readEvent(t, c, timeout)
	if !ok {
		return typingEvent{}, false
	}
	if evt.Type != "typing" {
		t.Fatalf("event type = %q, want typing", evt.Type)
	}
	var te typingEvent
	if err := json.Unmarshal(evt.Payload, &te); err != nil {
		t.Fatalf("malformed typing payload: %v", err)
	}
	return te, true
}

func TestTypingExcludesSender(t *testing.T) {
	m := NewManager()
	typer := newTestClient(t, m, "u1", "")
	watcher := newTestClient(t, m, "a1", "")

	room := models.UserRoom("u1")
	m.Join(typer, room)
	m.Join(watcher, room)

	typer.setTyping(room, true)

	te, ok := readTyping(t, watcher, 100*time.Millisecond)
	if !ok {
		t.Fatal("watcher received no typing event")
	}
	if te.Identity != "u1" || !te.IsTyping {
		t.Errorf("typing event = %+v, want u1 typing", te)
	}

	if _, ok := readEvent(t, typer, 20*time.Millisecond); ok {
		t.Error("typer received its own typing event")
	}
}

func TestTypingAutoExpires(t *testing.T) {
	m := NewManager()
	typer := newTestClient(t, m, "u1", "")
	watcher := newTestClient(t, m, "a1", "")

	room := models.UserRoom("u1")
	m.Join(typer, room)
	m.Join(watcher, room)

	typer.setTyping(room, true)

	if te, ok := readTyping(t, watcher, 100*time.Millisecond); !ok || !te.IsTyping {
		t.Fatalf("typing start = %+v (ok=%v), want isTyping true", te, ok)
	}

	// No explicit stop; the indicator must clear itself
	te, ok := readTyping(t, watcher, 500*time.Millisecond)
	if !ok {
		t.Fatal("typing indicator never expired")
	}
	if te.IsTyping {
		t.Errorf("expiry event = %+v, want isTyping false", te)
	}
}

func TestTypingRestartPostponesExpiry(t *testing.T) {
	m := NewManager()
	typer := newTestClient(t, m, "u1", "")
	watcher := newTestClient(t, m, "a1", "")

	room := models.UserRoom("u1")
	m.Join(typer, room)
	m.Join(watcher, room)

	typer.setTyping(room, true)
	if _, ok := readTyping(t, watcher, 100*time.Millisecond); !ok {
		t.Fatal("first typing event missing")
	}

	// Keystroke before the first timer fires restarts the countdown
	time.Sleep(20 * time.Millisecond)
	typer.setTyping(room, true)
	if _, ok := readTyping(t, watcher, 100*time.Millisecond); !ok {
		t.Fatal("second typing event missing")
	}

	te, ok := readTyping(t, watcher, 500*time.Millisecond)
	if !ok {
		t.Fatal("typing indicator never expired after restart")
	}
	if te.IsTyping {
		t.Errorf("expiry event = %+v, want isTyping false", te)
	}

	// Exactly one stop event; the superseded timer must not fire
	if extra, ok := readTyping(t, watcher, 150*time.Millisecond); ok {
		t.Errorf("superseded timer fired too: %+v", extra)
	}
}

func TestTypingExpiryAcrossLateJoin(t *testing.T) {
	m := NewManager()
	// A visitor that starts typing before it joins: no identity yet, and
	// the join below rewrites the session token while the expiry timer is
	// still armed. The expiry must use the identity from when typing
	// started and must not touch the client's fields.
	typer := newTestClient(t, m, "", "")
	watcher := newTestClient(t, m, "a1", "")

	room := models.AnonRoom("abc123")
	m.Join(watcher, room)

	typer.setTyping(room, true)
	typer.handleJoin(json.RawMessage(`{"sessionId":"abc123"}`))

	te, ok := readTyping(t, watcher, 100*time.Millisecond)
	if !ok || !te.IsTyping {
		t.Fatalf("typing start = %+v (ok=%v), want isTyping true", te, ok)
	}

	te, ok = readTyping(t, watcher, 500*time.Millisecond)
	if !ok {
		t.Fatal("typing indicator never expired")
	}
	if te.IsTyping {
		t.Errorf("expiry event = %+v, want isTyping false", te)
	}
	if te.Identity != "" {
		t.Errorf("expiry identity = %q, want the identity from when typing started", te.Identity)
	}
}

func TestExplicitTypingStopCancelsTimer(t *testing.T) {
	m := NewManager()
	typer := newTestClient(t, m, "u1", "")
	watcher := newTestClient(t, m, "a1", "")

	room := models.UserRoom("u1")
	m.Join(typer, room)
	m.Join(watcher, room)

	typer.setTyping(room, true)
	if _, ok := readTyping(t, watcher, 100*time.Millisecond); !ok {
		t.Fatal("typing start missing")
	}

	typer.setTyping(room, false)
	te, ok := readTyping(t, watcher, 100*time.Millisecond)
	if !ok || te.IsTyping {
		t.Fatalf("explicit stop = %+v (ok=%v), want isTyping false", te, ok)
	}

	// Timer was cancelled; no trailing auto-expiry event
	if extra, ok := readTyping(t, watcher, 150*time.Millisecond); ok {
		t.Errorf("cancelled timer fired: %+v", extra)
	}
}
