package store

import (
	"context"

	"bankline/models"
)

// MessageStore is the persistence port for chat messages. Both the Mongo
// implementation and the in-memory one used by tests satisfy it.
type MessageStore interface {
	// Append validates the message, assigns id and timestamp, and stores it
	// as a single atomic write.
	Append(ctx context.Context, msg *models.Message) (*models.Message, error)

	// ListByThread returns the thread's messages in display order
	// (timestamp ascending, insertion order on ties). offset/limit of 0
	// means no offset/no limit.
	ListByThread(ctx context.Context, threadID string, offset, limit int64) ([]models.Message, error)

	// FirstInThread returns the oldest message of a thread, which carries
	// the thread owner's identity. Returns NotFoundError for empty threads.
	FirstInThread(ctx context.Context, threadID string) (*models.Message, error)

	// The three aggregation views, one per identity kind. They are never
	// merged: a propeneer dashboard queries the agent and anonymous views,
	// a user client only its own.
	ListUserThreads(ctx context.Context, userID string) ([]models.ThreadSummary, error)
	ListAgentThreads(ctx context.Context) ([]models.ThreadSummary, error)
	ListAnonymousThreads(ctx context.Context) ([]models.ThreadSummary, error)

	// MarkRead flags every unread message in the thread addressed to the
	// receiver room as read. Idempotent; returns the number of messages
	// actually updated.
	MarkRead(ctx context.Context, threadID string, receiver models.Room) (int64, error)
}
