package chat

import "github.com/google/uuid"

// ResolveThread derives the stable thread id for a message. A supplied id
// is reused verbatim (continuation). Anonymous flows use the session token
// itself, so a visitor has exactly one thread per session. Fresh
// user-initiated threads get a generated id.
func ResolveThread(existingThreadID, sessionToken string) string {
	if existingThreadID != "" {
		return existingThreadID
	}
	if sessionToken != "" {
		return sessionToken
	}
	return NewThreadID()
}

// NewThreadID returns a fresh unique thread id.
func NewThreadID() string {
	return uuid.NewString()
}
