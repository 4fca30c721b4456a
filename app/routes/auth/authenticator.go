package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidInput covers malformed or missing form fields. Not a
	// security event; it does not count toward the lockout.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned for an unknown username, a
	// deactivated account and a wrong password alike, so responses do
	// not leak which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStorageUnavailable means the user store could not be reached.
	// The detail goes to the log, never to the client.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// LockedOutError is returned while the client's lockout window is active.
type LockedOutError struct {
	Remaining time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("locked out for another %s", e.Remaining.Round(time.Second))
}

// CredentialStore is the slice of the user store the authenticator needs.
type CredentialStore interface {
	ActiveUserByUsername(username string) (*models.User, error)
	TouchLastLogin(userID string) error
}

type dbCredentialStore struct {
	db *sql.DB
}

func NewDBCredentialStore(db *sql.DB) CredentialStore {
	return &dbCredentialStore{db: db}
}

func (s *dbCredentialStore) ActiveUserByUsername(username string) (*models.User, error) {
	return database.GetActiveUserByUsername(s.db, username)
}

func (s *dbCredentialStore) TouchLastLogin(userID string) error {
	return database.TouchLastLogin(s.db, userID)
}

// Authenticator verifies credentials and enforces the per-client lockout.
type Authenticator struct {
	store    CredentialStore
	attempts *attemptTracker
}

func NewAuthenticator(store CredentialStore) *Authenticator {
	return &Authenticator{
		store:    store,
		attempts: newAttemptTracker(config.MaxLoginAttempts, config.LockoutWindow),
	}
}

// Authenticate verifies a username/password pair for the given client.
// The username is trimmed; the password is taken as-is and never logged.
// Checks run in a fixed order: lockout, input validation, lookup,
// password verification. Every outcome is written to the audit log.
func (a *Authenticator) Authenticate(username, password, clientIP string) (*models.User, error) {
	if remaining := a.attempts.RemainingLockout(clientIP); remaining > 0 {
		log.Printf("[WARNING] login refused (locked out %s more): IP %s", remaining.Round(time.Second), clientIP)
		return nil, &LockedOutError{Remaining: remaining}
	}

	username = strings.TrimSpace(username)
	if err := validateLoginInput(username, password); err != nil {
		return nil, err
	}

	user, err := a.store.ActiveUserByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			a.recordFailure(username, clientIP)
			return nil, ErrInvalidCredentials
		}
		log.Printf("[ERROR] credential lookup failed for IP %s: %v", clientIP, err)
		return nil, ErrStorageUnavailable
	}

	// The lookup already filters on is_active; keep the belt-and-braces
	// check so a differently-sourced store cannot let inactive users in.
	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		a.recordFailure(username, clientIP)
		return nil, ErrInvalidCredentials
	}

	a.attempts.Reset(clientIP)
	if err := a.store.TouchLastLogin(user.ID); err != nil {
		log.Printf("[WARNING] failed to update last login for user %s: %v", user.Username, err)
	}
	log.Printf("[INFO] login succeeded: user %s (%s) from IP %s", user.Username, user.Role, clientIP)
	return user, nil
}

// validateLoginInput rejects out-of-bounds fields before any store lookup.
func validateLoginInput(username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	if len(username) < 3 || len(username) > 50 {
		return ErrInvalidInput
	}
	if len(password) < 6 {
		return ErrInvalidInput
	}
	return nil
}

func (a *Authenticator) recordFailure(username, clientIP string) {
	a.attempts.RecordFailure(clientIP)
	log.Printf("[WARNING] login failed: username %q from IP %s", username, clientIP)
}
