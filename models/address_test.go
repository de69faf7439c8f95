package models

import "testing"

func TestRoomConstructors(t *testing.T) {
	tests := []struct {
		room Room
		want string
	}{
		{UserRoom("64f1"), "user:64f1"},
		{AnonRoom("abc123"), "anon:abc123"},
		{AgentPool, "agents"},
	}

	for _, tt := range tests {
		if got := tt.room.String(); got != tt.want {
			t.Errorf("room = %q, want %q", got, tt.want)
		}
	}
}

func TestRoomKinds(t *testing.T) {
	tests := []struct {
		room     Room
		user     bool
		anon     bool
		pool     bool
		userID   string
		session  string
	}{
		{UserRoom("u1"), true, false, false, "u1", ""},
		{AnonRoom("s1"), false, true, false, "", "s1"},
		{AgentPool, false, false, true, "", ""},
	}

	for _, tt := range tests {
		if got := tt.room.IsUser(); got != tt.user {
			t.Errorf("%q IsUser = %v, want %v", tt.room, got, tt.user)
		}
		if got := tt.room.IsAnon(); got != tt.anon {
			t.Errorf("%q IsAnon = %v, want %v", tt.room, got, tt.anon)
		}
		if got := tt.room.IsAgentPool(); got != tt.pool {
			t.Errorf("%q IsAgentPool = %v, want %v", tt.room, got, tt.pool)
		}
		if got := tt.room.UserID(); got != tt.userID {
			t.Errorf("%q UserID = %q, want %q", tt.room, got, tt.userID)
		}
		if got := tt.room.SessionToken(); got != tt.session {
			t.Errorf("%q SessionToken = %q, want %q", tt.room, got, tt.session)
		}
	}
}
