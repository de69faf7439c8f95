package models

import "strings"

// Room is a canonical broadcast address. Every identity kind maps to exactly
// one room, and rooms are only built through the constructors below so the
// rest of the code can never invent an invalid address.
type Room string

// AgentPool is the shared room every connected propeneer joins. User and
// anonymous messages without an explicit receiver land here.
const AgentPool Room = "agents"

const (
	userPrefix = "user:"
	anonPrefix = "anon:"
)

// UserRoom returns the room for an authenticated user.
func UserRoom(userID string) Room {
	return Room(userPrefix + userID)
}

// AnonRoom returns the room for an anonymous visitor session.
func AnonRoom(sessionToken string) Room {
	return Room(anonPrefix + sessionToken)
}

func (r Room) IsAgentPool() bool {
	return r == AgentPool
}

func (r Room) IsUser() bool {
	return strings.HasPrefix(string(r), userPrefix)
}

func (r Room) IsAnon() bool {
	return strings.HasPrefix(string(r), anonPrefix)
}

// UserID returns the user id embedded in a user room, or "" for other kinds.
func (r Room) UserID() string {
	if !r.IsUser() {
		return ""
	}
	return strings.TrimPrefix(string(r), userPrefix)
}

// SessionToken returns the session token embedded in an anonymous room, or
// "" for other kinds.
func (r Room) SessionToken() string {
	if !r.IsAnon() {
		return ""
	}
	return strings.TrimPrefix(string(r), anonPrefix)
}

func (r Room) String() string {
	return string(r)
}
