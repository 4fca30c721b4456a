package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attendance-system/app/config"
	"attendance-system/app/models"

	"github.com/gofiber/fiber/v2"
)

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == "attendance_session" {
			return ck
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestSessionIDRotation(t *testing.T) {
	config.InitSessionStore()

	user := &models.User{
		ID:       "33333333-3333-3333-3333-333333333333",
		Username: "mkasozi",
		Role:     models.RoleTeacher,
		FullName: "Musa Kasozi",
		IsActive: true,
	}

	app := fiber.New()
	app.Get("/login", func(c *fiber.Ctx) error {
		return establishSession(c, user)
	})
	app.Get("/age", func(c *fiber.Ctx) error {
		sess, err := config.SessionStore().Get(c)
		if err != nil {
			return err
		}
		sess.Set("regenerated_at", time.Now().Add(-config.SessionRotationInterval-time.Minute).Unix())
		return sess.Save()
	})
	app.Get("/check", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	loginCookie := sessionCookie(t, resp)

	// A fresh session keeps its id across requests.
	req := httptest.NewRequest("GET", "/check", nil)
	req.AddCookie(loginCookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("check request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ck := sessionCookie(t, resp); ck.Value != loginCookie.Value {
		t.Errorf("fresh session id changed from %s to %s", loginCookie.Value, ck.Value)
	}

	// Once the rotation interval has elapsed, the id is swapped while the
	// session stays authenticated.
	req = httptest.NewRequest("GET", "/age", nil)
	req.AddCookie(loginCookie)
	if _, err = app.Test(req); err != nil {
		t.Fatalf("age request: %v", err)
	}

	req = httptest.NewRequest("GET", "/check", nil)
	req.AddCookie(loginCookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("check request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 after rotation, got %d", resp.StatusCode)
	}
	if ck := sessionCookie(t, resp); ck.Value == loginCookie.Value {
		t.Error("session id should rotate after the interval")
	}
}
