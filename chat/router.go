package chat

import (
	"context"

	"bankline/models"
)

// EventReceiveMessage is the outbound event carrying a delivered message.
const EventReceiveMessage = "receiveMessage"

// MessageStore is the slice of the persistence layer the router needs.
type MessageStore interface {
	Append(ctx context.Context, msg *models.Message) (*models.Message, error)
	FirstInThread(ctx context.Context, threadID string) (*models.Message, error)
}

// Broadcaster fans an event out to every connection currently joined to a
// room. Broadcasting to an empty room is a silent no-op.
type Broadcaster interface {
	Broadcast(room models.Room, event string, payload interface{})
}

// Router runs the full send pipeline: classify, sanitize, resolve the
// thread, rate-limit anonymous senders, persist, fan out, acknowledge.
type Router struct {
	store       MessageStore
	broadcaster Broadcaster
	limiter     *SessionRateLimiter
}

func NewRouter(store MessageStore, broadcaster Broadcaster, limiter *SessionRateLimiter) *Router {
	return &Router{
		store:       store,
		broadcaster: broadcaster,
		limiter:     limiter,
	}
}

// Send validates, persists and routes one message. Validation, identity and
// rate-limit failures are returned before any side effect; a persistence
// failure aborts the operation with no broadcast.
func (r *Router) Send(ctx context.Context, creds Credentials, req SendRequest) (*models.Receipt, error) {
	content := SanitizeContent(req.Content)
	if content == "" {
		return nil, &models.ValidationError{Reason: "message content is required"}
	}

	cls, err := Classify(creds, req)
	if err != nil {
		return nil, err
	}

	session := req.SessionToken
	if session == "" {
		session = creds.SessionToken
	}

	threadID, err := r.resolveThread(ctx, cls, req, session)
	if err != nil {
		return nil, err
	}

	// A propeneer can only reply into an existing thread; resolve the
	// receiver from the thread owner when the reply names none.
	if cls.Kind == models.SenderPropeneer {
		owner, err := r.store.FirstInThread(ctx, threadID)
		if err != nil {
			return nil, err
		}
		if cls.ReceiverRoom == "" {
			if owner.SessionToken != "" {
				cls.ReceiverRoom = models.AnonRoom(owner.SessionToken)
			} else {
				cls.ReceiverRoom = models.UserRoom(owner.SenderID)
			}
		}
	}

	if cls.Kind == models.SenderNone && !r.limiter.Allow(session) {
		return nil, &models.RateLimitError{
			SessionToken: session,
			Limit:        r.limiter.Limit(),
			Window:       r.limiter.Window(),
		}
	}

	msg := &models.Message{
		SenderKind: cls.Kind,
		Receiver:   cls.ReceiverRoom,
		Content:    content,
		ThreadID:   threadID,
		IsSupport:  cls.Kind == models.SenderPropeneer,
	}
	if cls.Kind != models.SenderNone {
		msg.SenderID = req.SenderID
		if msg.SenderID == "" {
			msg.SenderID = creds.UserID
		}
	}
	// The session token travels with the message whenever an anonymous
	// visitor is on either end of it.
	switch {
	case cls.Kind == models.SenderNone:
		msg.SessionToken = session
	case cls.ReceiverRoom.IsAnon():
		msg.SessionToken = cls.ReceiverRoom.SessionToken()
	}

	stored, err := r.store.Append(ctx, msg)
	if err != nil {
		return nil, err
	}

	// Deliver to the receiver room, then echo to the sender room only when
	// the two differ, so nobody gets the same message twice.
	r.broadcaster.Broadcast(stored.Receiver, EventReceiveMessage, stored)
	if cls.SenderRoom != stored.Receiver {
		r.broadcaster.Broadcast(cls.SenderRoom, EventReceiveMessage, stored)
	}

	return &models.Receipt{
		MessageID: stored.ID.Hex(),
		ThreadID:  stored.ThreadID,
		IsSupport: stored.IsSupport,
		Timestamp: stored.Timestamp,
	}, nil
}

func (r *Router) resolveThread(ctx context.Context, cls Classification, req SendRequest, session string) (string, error) {
	switch cls.Kind {
	case models.SenderNone:
		return ResolveThread(req.ThreadID, session), nil
	case models.SenderPropeneer:
		if req.ThreadID != "" {
			return req.ThreadID, nil
		}
		// Replying straight into a visitor's room: that session is the thread.
		if cls.ReceiverRoom.IsAnon() {
			return cls.ReceiverRoom.SessionToken(), nil
		}
		return "", &models.IdentityError{
			Reason: "a propeneer reply requires a thread id or a receiver",
		}
	default:
		return ResolveThread(req.ThreadID, ""), nil
	}
}
