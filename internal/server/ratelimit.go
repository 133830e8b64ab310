package server

import (
	"sync"
	"time"
)

// rateLimit counts frames per fixed window. A zero limit admits everything.
type rateLimit struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	count  int
	start  time.Time
	now    func() time.Time
}

func newRateLimit(limit int, window time.Duration) *rateLimit {
	return &rateLimit{limit: limit, window: window, now: time.Now}
}

// allow records one frame and reports whether it fits in the current window
func (r *rateLimit) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.start) >= r.window {
		r.count = 0
		r.start = now
	}
	if r.count >= r.limit {
		return false
	}
	r.count++
	return true
}
