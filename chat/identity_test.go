package chat

import (
	"errors"
	"testing"

	"bankline/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		req      SendRequest
		kind     models.SenderKind
		sender   models.Room
		receiver models.Room
	}{
		{
			name:     "authenticated user to support",
			creds:    Credentials{UserID: "u1"},
			kind:     models.SenderUser,
			sender:   models.UserRoom("u1"),
			receiver: models.AgentPool,
		},
		{
			name:     "sender id from payload",
			req:      SendRequest{SenderID: "u2"},
			kind:     models.SenderUser,
			sender:   models.UserRoom("u2"),
			receiver: models.AgentPool,
		},
		{
			name:     "anonymous session to support",
			creds:    Credentials{SessionToken: "abc123"},
			kind:     models.SenderNone,
			sender:   models.AnonRoom("abc123"),
			receiver: models.AgentPool,
		},
		{
			name:     "propeneer without receiver leaves room unresolved",
			creds:    Credentials{UserID: "a1", Role: RolePropeneer},
			kind:     models.SenderPropeneer,
			sender:   models.AgentPool,
			receiver: "",
		},
		{
			name:     "propeneer replying into visitor room passes through",
			creds:    Credentials{UserID: "a1", Role: RolePropeneer},
			req:      SendRequest{ReceiverID: "anon:abc123"},
			kind:     models.SenderPropeneer,
			sender:   models.AgentPool,
			receiver: models.AnonRoom("abc123"),
		},
		{
			name:     "bare receiver id is wrapped",
			creds:    Credentials{UserID: "a1", Role: RolePropeneer},
			req:      SendRequest{ReceiverID: "u7"},
			kind:     models.SenderPropeneer,
			sender:   models.AgentPool,
			receiver: models.UserRoom("u7"),
		},
		{
			name:     "canonical user receiver kept",
			creds:    Credentials{UserID: "u1"},
			req:      SendRequest{ReceiverID: "user:u9"},
			kind:     models.SenderUser,
			sender:   models.UserRoom("u1"),
			receiver: models.UserRoom("u9"),
		},
		{
			name:     "explicit pool receiver kept",
			creds:    Credentials{SessionToken: "s1"},
			req:      SendRequest{ReceiverID: "agents"},
			kind:     models.SenderNone,
			sender:   models.AnonRoom("s1"),
			receiver: models.AgentPool,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := Classify(tt.creds, tt.req)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if cls.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", cls.Kind, tt.kind)
			}
			if cls.SenderRoom != tt.sender {
				t.Errorf("SenderRoom = %q, want %q", cls.SenderRoom, tt.sender)
			}
			if cls.ReceiverRoom != tt.receiver {
				t.Errorf("ReceiverRoom = %q, want %q", cls.ReceiverRoom, tt.receiver)
			}
		})
	}
}

func TestClassifyNoIdentity(t *testing.T) {
	tests := []struct {
		name string
		req  SendRequest
	}{
		{name: "nothing at all", req: SendRequest{Content: "hello"}},
		// A receiver alone does not identify the sender
		{name: "receiver only", req: SendRequest{ReceiverID: "user:u1", Content: "hello"}},
		{name: "pool receiver only", req: SendRequest{ReceiverID: "agents", Content: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(Credentials{}, tt.req)
			if err == nil {
				t.Fatal("Classify() = nil, want IdentityError")
			}
			var ierr *models.IdentityError
			if !errors.As(err, &ierr) {
				t.Fatalf("Classify() = %T, want *IdentityError", err)
			}
		})
	}
}
