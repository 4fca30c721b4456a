package auth

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"attendance-system/app/config"
	"attendance-system/app/models"

	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	users       map[string]*models.User
	lookupErr   error
	touchedIDs  []string
	touchResult error
}

func (s *fakeStore) ActiveUserByUsername(username string) (*models.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	user, ok := s.users[username]
	if !ok || !user.IsActive {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *fakeStore) TouchLastLogin(userID string) error {
	s.touchedIDs = append(s.touchedIDs, userID)
	return s.touchResult
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func newTestAuthenticator(t *testing.T, users ...*models.User) (*Authenticator, *fakeStore) {
	t.Helper()
	store := &fakeStore{users: make(map[string]*models.User)}
	for _, u := range users {
		store.users[u.Username] = u
	}
	return NewAuthenticator(store), store
}

func testTeacher(t *testing.T) *models.User {
	return &models.User{
		ID:       "11111111-1111-1111-1111-111111111111",
		Username: "mkasozi",
		Password: mustHash(t, "correct-horse"),
		Role:     models.RoleTeacher,
		FullName: "Musa Kasozi",
		IsActive: true,
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	teacher := testTeacher(t)
	a, store := newTestAuthenticator(t, teacher)

	user, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if user.ID != teacher.ID {
		t.Errorf("expected user %s, got %s", teacher.ID, user.ID)
	}
	if len(store.touchedIDs) != 1 || store.touchedIDs[0] != teacher.ID {
		t.Errorf("expected last login touch for %s, got %v", teacher.ID, store.touchedIDs)
	}
}

func TestAuthenticateTrimsUsername(t *testing.T) {
	a, _ := newTestAuthenticator(t, testTeacher(t))

	if _, err := a.Authenticate("  mkasozi  ", "correct-horse", "10.0.0.1"); err != nil {
		t.Errorf("expected surrounding whitespace to be ignored, got %v", err)
	}
}

func TestAuthenticateInputValidation(t *testing.T) {
	a, _ := newTestAuthenticator(t, testTeacher(t))

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "correct-horse"},
		{"empty password", "mkasozi", ""},
		{"whitespace username", "   ", "correct-horse"},
		{"username too short", "ab", "correct-horse"},
		{"username too long", strings.Repeat("a", 51), "correct-horse"},
		{"password too short", "mkasozi", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Authenticate(tc.username, tc.password, "10.0.0.1")
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	// Malformed input is rejected before the lookup and must not count
	// toward the lockout.
	if remaining := a.attempts.RemainingLockout("10.0.0.1"); remaining != 0 {
		t.Errorf("validation failures should not trigger a lockout, got %s", remaining)
	}
}

func TestAuthenticateUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	a, _ := newTestAuthenticator(t, testTeacher(t))

	_, unknownErr := a.Authenticate("nosuchuser", "correct-horse", "10.0.0.1")
	_, wrongPassErr := a.Authenticate("mkasozi", "wrong-password", "10.0.0.2")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassErr)
	}
}

func TestAuthenticateInactiveUser(t *testing.T) {
	teacher := testTeacher(t)
	teacher.IsActive = false
	a, _ := newTestAuthenticator(t, teacher)

	_, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("inactive account must look like bad credentials, got %v", err)
	}
}

func TestAuthenticateStorageFailure(t *testing.T) {
	a, store := newTestAuthenticator(t, testTeacher(t))
	store.lookupErr = errors.New("connection refused")

	_, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.1")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
	// Infrastructure failures are not the client's fault.
	if remaining := a.attempts.RemainingLockout("10.0.0.1"); remaining != 0 {
		t.Errorf("storage errors should not count toward the lockout, got %s", remaining)
	}
}

func TestAuthenticateLockout(t *testing.T) {
	a, _ := newTestAuthenticator(t, testTeacher(t))

	for i := 0; i < config.MaxLoginAttempts; i++ {
		if _, err := a.Authenticate("mkasozi", "wrong-password", "10.0.0.1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Even the correct password is refused while locked out.
	_, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.1")
	var locked *LockedOutError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedOutError, got %v", err)
	}
	if locked.Remaining <= 0 || locked.Remaining > config.LockoutWindow {
		t.Errorf("remaining %s outside (0, %s]", locked.Remaining, config.LockoutWindow)
	}

	// A different client is unaffected.
	if _, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.9"); err != nil {
		t.Errorf("other client should still log in, got %v", err)
	}
}

func TestAuthenticateLockoutExpires(t *testing.T) {
	a, _ := newTestAuthenticator(t, testTeacher(t))
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a.attempts.now = func() time.Time { return now }

	for i := 0; i < config.MaxLoginAttempts; i++ {
		a.Authenticate("mkasozi", "wrong-password", "10.0.0.1")
	}

	now = now.Add(config.LockoutWindow)
	if _, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.1"); err != nil {
		t.Errorf("expected login after the window elapsed, got %v", err)
	}
}

func TestAuthenticateSuccessResetsCounter(t *testing.T) {
	a, _ := newTestAuthenticator(t, testTeacher(t))

	for i := 0; i < config.MaxLoginAttempts-1; i++ {
		a.Authenticate("mkasozi", "wrong-password", "10.0.0.1")
	}
	if _, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.1"); err != nil {
		t.Fatalf("expected success below the threshold, got %v", err)
	}

	// The counter restarted, so the next failure is the first of a new run.
	a.Authenticate("mkasozi", "wrong-password", "10.0.0.1")
	if remaining := a.attempts.RemainingLockout("10.0.0.1"); remaining != 0 {
		t.Errorf("expected no lockout after the reset, got %s", remaining)
	}
}

func TestAuthenticateTouchFailureIsNotFatal(t *testing.T) {
	a, store := newTestAuthenticator(t, testTeacher(t))
	store.touchResult = errors.New("write timeout")

	if _, err := a.Authenticate("mkasozi", "correct-horse", "10.0.0.1"); err != nil {
		t.Errorf("last-login bookkeeping must not fail the login, got %v", err)
	}
}
