package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"bankline/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps messages in an append-only slice guarded by one mutex.
// It mirrors the MongoStore semantics and backs the tests and local
// development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	stored := *msg
	stored.ID = primitive.NewObjectID()
	stored.Timestamp = time.Now().UTC()

	if err := stored.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.messages = append(s.messages, stored)
	s.mu.Unlock()

	return &stored, nil
}

func (s *MemoryStore) ListByThread(ctx context.Context, threadID string, offset, limit int64) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Append order is already (timestamp asc, insertion order on ties).
	var messages []models.Message
	for _, m := range s.messages {
		if m.ThreadID == threadID {
			messages = append(messages, m)
		}
	}

	if offset > 0 {
		if offset >= int64(len(messages)) {
			return nil, nil
		}
		messages = messages[offset:]
	}
	if limit > 0 && int64(len(messages)) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (s *MemoryStore) FirstInThread(ctx context.Context, threadID string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.ThreadID == threadID {
			first := m
			return &first, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "thread", ID: threadID}
}

func (s *MemoryStore) ListUserThreads(ctx context.Context, userID string) ([]models.ThreadSummary, error) {
	room := models.UserRoom(userID)
	return s.collectThreads(
		func(m *models.Message) bool {
			return m.SenderID == userID || m.Receiver == room
		},
		func(m *models.Message) bool {
			return m.Receiver == room && !m.Read
		},
		false,
	), nil
}

func (s *MemoryStore) ListAgentThreads(ctx context.Context) ([]models.ThreadSummary, error) {
	return s.collectThreads(
		func(m *models.Message) bool {
			return m.SenderKind == models.SenderUser
		},
		func(m *models.Message) bool {
			return !m.Read
		},
		false,
	), nil
}

func (s *MemoryStore) ListAnonymousThreads(ctx context.Context) ([]models.ThreadSummary, error) {
	return s.collectThreads(
		func(m *models.Message) bool {
			return m.SessionToken != ""
		},
		func(m *models.Message) bool {
			return false
		},
		true,
	), nil
}

// collectThreads groups the matching messages by thread (anonymous view
// groups by session token), keeping the last message per group and counting
// the ones the unread predicate selects.
func (s *MemoryStore) collectThreads(match, unread func(*models.Message) bool, anonymous bool) []models.ThreadSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byThread := make(map[string]*models.ThreadSummary)
	var order []string

	for i := range s.messages {
		m := s.messages[i]
		if !match(&m) {
			continue
		}

		key := m.ThreadID
		if anonymous {
			key = m.SessionToken
		}

		summary, ok := byThread[key]
		if !ok {
			summary = &models.ThreadSummary{ThreadID: key, IsAnonymous: anonymous}
			byThread[key] = summary
			order = append(order, key)
		}
		summary.LastMessage = m
		if unread(&m) {
			summary.UnreadCount++
		}
	}

	threads := make([]models.ThreadSummary, 0, len(order))
	for _, key := range order {
		threads = append(threads, *byThread[key])
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastMessage.Timestamp.After(threads[j].LastMessage.Timestamp)
	})
	return threads
}

func (s *MemoryStore) MarkRead(ctx context.Context, threadID string, receiver models.Room) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for i := range s.messages {
		m := &s.messages[i]
		if m.ThreadID == threadID && m.Receiver == receiver && !m.Read {
			m.Read = true
			updated++
		}
	}
	return updated, nil
}
