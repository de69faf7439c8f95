package models

import (
	"fmt"
	"time"
)

// ValidationError rejects a malformed or incomplete message before it is
// persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// IdentityError means the sender or receiver of a message could not be
// classified as a user, a propeneer or an anonymous session.
type IdentityError struct {
	Reason string
}

func (e *IdentityError) Error() string {
	return "identity: " + e.Reason
}

// RateLimitError is returned when an anonymous session exceeds its message
// quota. Nothing is persisted or broadcast for the rejected message.
type RateLimitError struct {
	SessionToken string
	Limit        int
	Window       time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit: session over %d messages per %s", e.Limit, e.Window)
}

// NotFoundError marks an operation referencing a thread or session that has
// no messages.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

// TransportError records a failed delivery to a live connection. It is
// logged and swallowed; the message is already durable and the next history
// fetch is the recovery path.
type TransportError struct {
	Room Room
	Err  error
}

func (e *TransportError) Error() string {
	return "transport: room " + string(e.Room) + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
