package config

import (
	"os"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

var sessionStore *session.Store

// InitSessionStore creates the server-side session store. Cookies are
// HTTP-only and strict same-site; the Secure flag follows COOKIE_SECURE
// so local development over plain HTTP still works.
func InitSessionStore() {
	sessionStore = session.New(session.Config{
		Expiration:     SessionTimeout,
		KeyLookup:      "cookie:attendance_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Strict",
		CookieSecure:   os.Getenv("COOKIE_SECURE") == "true",
		KeyGenerator: func() string {
			return uuid.NewString()
		},
	})
}

func SessionStore() *session.Store {
	return sessionStore
}

// SetFlash stores a one-shot message of the given kind (success, error, ...).
func SetFlash(sess *session.Session, kind, message string) {
	sess.Set("flash_"+kind, message)
}

// PopFlash returns the message of the given kind and consumes it.
func PopFlash(sess *session.Session, kind string) string {
	key := "flash_" + kind
	msg, _ := sess.Get(key).(string)
	if msg != "" {
		sess.Delete(key)
	}
	return msg
}
