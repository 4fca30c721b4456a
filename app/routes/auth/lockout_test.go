package auth

import (
	"sync"
	"testing"
	"time"
)

func newTestTracker(maxAttempts int, window time.Duration) (*attemptTracker, *time.Time) {
	t := newAttemptTracker(maxAttempts, window)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	t.now = func() time.Time { return now }
	return t, &now
}

func TestTrackerBelowThreshold(t *testing.T) {
	tracker, _ := newTestTracker(5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		tracker.RecordFailure("10.0.0.1")
	}
	if remaining := tracker.RemainingLockout("10.0.0.1"); remaining != 0 {
		t.Errorf("expected no lockout after 4 failures, got %s", remaining)
	}
}

func TestTrackerLocksAtThreshold(t *testing.T) {
	tracker, _ := newTestTracker(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		tracker.RecordFailure("10.0.0.1")
	}
	if remaining := tracker.RemainingLockout("10.0.0.1"); remaining != 15*time.Minute {
		t.Errorf("expected full 15m lockout, got %s", remaining)
	}
	if remaining := tracker.RemainingLockout("10.0.0.2"); remaining != 0 {
		t.Errorf("other client should not be locked, got %s", remaining)
	}
}

func TestTrackerWindowElapses(t *testing.T) {
	tracker, now := newTestTracker(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		tracker.RecordFailure("10.0.0.1")
	}

	*now = now.Add(14 * time.Minute)
	if remaining := tracker.RemainingLockout("10.0.0.1"); remaining != time.Minute {
		t.Errorf("expected 1m remaining, got %s", remaining)
	}

	*now = now.Add(time.Minute)
	if remaining := tracker.RemainingLockout("10.0.0.1"); remaining != 0 {
		t.Errorf("expected lockout to expire, got %s", remaining)
	}

	// The elapsed window also resets the counter, so one new failure
	// does not lock again.
	tracker.RecordFailure("10.0.0.1")
	if remaining := tracker.RemainingLockout("10.0.0.1"); remaining != 0 {
		t.Errorf("counter should have reset with the window, got %s", remaining)
	}
}

func TestTrackerReset(t *testing.T) {
	tracker, _ := newTestTracker(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		tracker.RecordFailure("10.0.0.1")
	}
	tracker.Reset("10.0.0.1")
	if remaining := tracker.RemainingLockout("10.0.0.1"); remaining != 0 {
		t.Errorf("expected reset to clear the lockout, got %s", remaining)
	}
}

func TestTrackerPrune(t *testing.T) {
	tracker, now := newTestTracker(5, 15*time.Minute)

	tracker.RecordFailure("10.0.0.1")
	*now = now.Add(10 * time.Minute)
	tracker.RecordFailure("10.0.0.2")

	*now = now.Add(6 * time.Minute)
	tracker.Prune()

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if _, ok := tracker.clients["10.0.0.1"]; ok {
		t.Error("stale counter for 10.0.0.1 should have been pruned")
	}
	if _, ok := tracker.clients["10.0.0.2"]; !ok {
		t.Error("counter for 10.0.0.2 is still inside the window and should remain")
	}
}

func TestTrackerConcurrentFailures(t *testing.T) {
	tracker := newAttemptTracker(5, 15*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.RecordFailure("10.0.0.1")
		}()
	}
	wg.Wait()

	tracker.mu.Lock()
	attempts := tracker.clients["10.0.0.1"].attempts
	tracker.mu.Unlock()
	if attempts != 20 {
		t.Errorf("expected 20 recorded failures, got %d", attempts)
	}
	if remaining := tracker.RemainingLockout("10.0.0.1"); remaining == 0 {
		t.Error("expected client to be locked out")
	}
}
