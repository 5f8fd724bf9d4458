package admin

import (
	"sync"
	"time"
)

type attempt struct {
	count   int
	resetAt time.Time
}

// AttemptLimiter counts unlock attempts per source in fixed windows that
// start at the first attempt.
type AttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attempt
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewAttemptLimiter(limit int, window time.Duration, now func() time.Time) *AttemptLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &AttemptLimiter{
		attempts: make(map[string]*attempt),
		limit:    limit,
		window:   window,
		now:      now,
	}
}

// Allow records one attempt for key and reports whether it is within the
// limit.
func (l *AttemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a, ok := l.attempts[key]
	if !ok || now.After(a.resetAt) {
		a = &attempt{resetAt: now.Add(l.window)}
		l.attempts[key] = a
	}
	a.count++
	return a.count <= l.limit
}

// Sweep forgets every source whose window has elapsed and returns how many
// were dropped.
func (l *AttemptLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	dropped := 0
	for key, a := range l.attempts {
		if now.After(a.resetAt) {
			delete(l.attempts, key)
			dropped++
		}
	}
	return dropped
}

func (l *AttemptLimiter) Window() time.Duration {
	return l.window
}

func (l *AttemptLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
