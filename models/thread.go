package models

import "time"

// ThreadSummary is the aggregated view of one conversation: its
// chronologically last message plus the unread count for the viewer the
// query was run for. Threads are never stored separately; they exist only
// as groupings of messages sharing a threadId.
type ThreadSummary struct {
	ThreadID    string  `bson:"_id" json:"threadId"`
	LastMessage Message `bson:"lastMessage" json:"lastMessage"`
	UnreadCount int64   `bson:"unreadCount" json:"unreadCount"`
	IsAnonymous bool    `bson:"-" json:"isAnonymous"`
}

// Receipt acknowledges a stored and routed message back to its sender.
type Receipt struct {
	MessageID string    `json:"messageId"`
	ThreadID  string    `json:"threadId"`
	IsSupport bool      `json:"isSupport"`
	Timestamp time.Time `json:"timestamp"`
}
