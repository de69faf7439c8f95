package chat

import (
	"sync"
	"time"
)

// Anonymous sessions may send at most AnonymousMessageLimit messages per
// AnonymousWindow. Authenticated senders are not limited here.
const (
	AnonymousMessageLimit = 50
	AnonymousWindow       = 15 * time.Minute
)

// SessionRateLimiter counts messages per session token inside a fixed
// window.
type SessionRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

func NewSessionRateLimiter(limit int, window time.Duration) *SessionRateLimiter {
	return &SessionRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

func (rl *SessionRateLimiter) Allow(sessionToken string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	// Drop requests that fell out of the window
	requests := rl.requests[sessionToken]
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	requests = requests[i:]

	// Evict sessions whose whole window has elapsed so idle visitors do
	// not accumulate in the map.
	for token, ts := range rl.requests {
		if token == sessionToken {
			continue
		}
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(rl.requests, token)
		}
	}

	if len(requests) >= rl.limit {
		rl.requests[sessionToken] = requests
		return false
	}

	rl.requests[sessionToken] = append(requests, now)
	return true
}

func (rl *SessionRateLimiter) Limit() int {
	return rl.limit
}

func (rl *SessionRateLimiter) Window() time.Duration {
	return rl.window
}
