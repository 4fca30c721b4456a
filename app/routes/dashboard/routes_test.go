package dashboard

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"attendance-system/app/config"

	"github.com/gofiber/fiber/v2"
)

func TestPopFlashesConsumesBothKinds(t *testing.T) {
	config.InitSessionStore()

	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		sess, err := config.SessionStore().Get(c)
		if err != nil {
			return err
		}
		config.SetFlash(sess, "success", "saved")
		config.SetFlash(sess, "error", "no permission")
		return sess.Save()
	})
	app.Get("/read", func(c *fiber.Ctx) error {
		success, failure := popFlashes(c)
		return c.SendString(success + "|" + failure)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/set", nil))
	if err != nil {
		t.Fatalf("set request: %v", err)
	}
	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "attendance_session" {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie in response")
	}

	req := httptest.NewRequest("GET", "/read", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("read request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "saved|no permission" {
		t.Fatalf("expected both flash kinds, got %q", body)
	}

	// Flashes are one-shot; a second read finds nothing.
	req = httptest.NewRequest("GET", "/read", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("second read request: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	if string(body) != "|" {
		t.Errorf("expected consumed flashes, got %q", body)
	}
}
