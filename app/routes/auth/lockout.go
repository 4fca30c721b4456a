package auth

import (
	"sync"
	"time"
)

type attemptRecord struct {
	attempts    int
	lastAttempt time.Time
}

// attemptTracker counts failed logins per client IP. Check and increment
// happen under one lock so parallel requests cannot slip past the
// threshold. Counters are process-local; a multi-instance deployment
// would need a shared store behind the same interface.
type attemptTracker struct {
	mu          sync.Mutex
	clients     map[string]*attemptRecord
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func newAttemptTracker(maxAttempts int, window time.Duration) *attemptTracker {
	return &attemptTracker{
		clients:     make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// RemainingLockout returns how long the client stays locked out, or zero
// if it may attempt a login. An elapsed window resets the counter.
func (t *attemptTracker) RemainingLockout(clientIP string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.clients[clientIP]
	if !ok || rec.attempts < t.maxAttempts {
		return 0
	}

	elapsed := t.now().Sub(rec.lastAttempt)
	if elapsed >= t.window {
		delete(t.clients, clientIP)
		return 0
	}
	return t.window - elapsed
}

// RecordFailure increments the client's counter and stamps the attempt time.
func (t *attemptTracker) RecordFailure(clientIP string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.clients[clientIP]
	if !ok {
		rec = &attemptRecord{}
		t.clients[clientIP] = rec
	}
	rec.attempts++
	rec.lastAttempt = t.now()
}

// Reset clears the counter after a successful login.
func (t *attemptTracker) Reset(clientIP string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.clients, clientIP)
}

// Prune drops counters whose window has elapsed. Called periodically by
// the background scheduler so idle clients do not accumulate.
func (t *attemptTracker) Prune() {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.window)
	for ip, rec := range t.clients {
		if rec.lastAttempt.Before(cutoff) {
			delete(t.clients, ip)
		}
	}
}
