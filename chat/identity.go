package chat

import (
	"bankline/models"
)

// RolePropeneer is the JWT role claim support agents carry.
const RolePropeneer = "propeneer"

// Credentials is the connection-level identity established at handshake or
// by the HTTP auth middleware. Zero values mean "not present".
type Credentials struct {
	UserID       string
	Role         string
	SessionToken string
}

// SendRequest is the per-message payload as supplied by the client.
type SendRequest struct {
	SenderID     string
	SessionToken string
	ReceiverID   string
	ThreadID     string
	Content      string
}

// Classification is the classifier's verdict for one inbound message.
// ReceiverRoom may be empty for a propeneer reply that names no receiver;
// the router then resolves it from the thread owner.
type Classification struct {
	Kind         models.SenderKind
	SenderRoom   models.Room
	ReceiverRoom models.Room
}

// Classify determines the sender kind and the canonical sender and receiver
// rooms for a message. It fails with IdentityError when the sender has
// neither an authenticated identity nor a session token; naming a receiver
// does not substitute for a sender identity.
func Classify(creds Credentials, req SendRequest) (Classification, error) {
	senderID := req.SenderID
	if senderID == "" {
		senderID = creds.UserID
	}
	session := req.SessionToken
	if session == "" {
		session = creds.SessionToken
	}

	if senderID == "" && session == "" {
		return Classification{}, &models.IdentityError{
			Reason: "either a sender id or a session token must be provided",
		}
	}

	var cls Classification
	switch {
	case senderID != "" && creds.Role == RolePropeneer:
		cls.Kind = models.SenderPropeneer
		cls.SenderRoom = models.AgentPool
	case senderID != "":
		cls.Kind = models.SenderUser
		cls.SenderRoom = models.UserRoom(senderID)
	default:
		cls.Kind = models.SenderNone
		cls.SenderRoom = models.AnonRoom(session)
	}

	switch {
	case req.ReceiverID != "":
		cls.ReceiverRoom = ReceiverRoom(req.ReceiverID)
	case cls.Kind == models.SenderPropeneer:
		// No explicit receiver: the router derives it from the thread owner.
		cls.ReceiverRoom = ""
	default:
		// User and anonymous messages go to the support pool.
		cls.ReceiverRoom = models.AgentPool
	}

	return cls, nil
}

// ReceiverRoom canonicalizes an explicit receiver address. Addresses that
// already look like an anonymous room pass through unchanged, so a
// propeneer can reply into a visitor's room without the visitor having any
// authenticated identity. Anything else is the pool marker or a bare user
// id to wrap.
func ReceiverRoom(receiverID string) models.Room {
	r := models.Room(receiverID)
	switch {
	case r.IsAnon():
		return r
	case r.IsAgentPool():
		return r
	case r.IsUser():
		return r
	default:
		return models.UserRoom(receiverID)
	}
}
