package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SenderKind tags who authored a message.
type SenderKind string

const (
	SenderUser      SenderKind = "user"
	SenderPropeneer SenderKind = "propeneer"
	// SenderNone marks anonymous-origin messages, routed purely by session.
	SenderNone SenderKind = "none"
)

type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID     string             `bson:"senderId,omitempty" json:"senderId,omitempty"`
	SenderKind   SenderKind         `bson:"senderKind" json:"senderKind"`
	SessionToken string             `bson:"sessionToken,omitempty" json:"sessionToken,omitempty"`
	Receiver     Room               `bson:"receiver,omitempty" json:"receiver,omitempty"`
	Content      string             `bson:"content" json:"content"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	Read         bool               `bson:"read" json:"read"`
	ThreadID     string             `bson:"threadId" json:"threadId"`
	IsSupport    bool               `bson:"isSupport" json:"isSupport"`
}

// Validate checks the record invariants before persistence. The store calls
// this on every append so no malformed message can become durable.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Content) == "" {
		return &ValidationError{Reason: "message content is required"}
	}
	if m.ThreadID == "" {
		return &ValidationError{Reason: "thread id is required"}
	}
	switch m.SenderKind {
	case SenderUser, SenderPropeneer:
		if m.SenderID == "" {
			return &ValidationError{Reason: "sender id is required for " + string(m.SenderKind) + " messages"}
		}
	case SenderNone:
		if m.SessionToken == "" {
			return &ValidationError{Reason: "session token is required for anonymous messages"}
		}
	default:
		return &ValidationError{Reason: "unknown sender kind: " + string(m.SenderKind)}
	}
	return nil
}
