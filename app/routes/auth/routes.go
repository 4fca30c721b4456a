package auth

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"

	"github.com/gofiber/fiber/v2"
)

var authenticator *Authenticator

func SetupAuthRoutes(app *fiber.App) {
	authenticator = NewAuthenticator(NewDBCredentialStore(config.GetDB()))

	auth := app.Group("/auth")

	// Public routes
	auth.Get("/login", ShowLoginPage)
	auth.Post("/login", LoginForm)
	auth.Post("/logout", LogoutHandler)

	// Protected routes
	auth.Use(AuthMiddleware)
	auth.Get("/profile", ShowProfilePage)
	auth.Post("/change-password", ChangePasswordForm)
}

// PruneLoginAttempts drops stale lockout counters. Called by the
// background scheduler.
func PruneLoginAttempts() {
	if authenticator != nil {
		authenticator.attempts.Prune()
	}
}

// landingPath is where each role lands after login and where wrong-role
// requests are sent back to.
func landingPath(role models.Role) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}

// resolveRedirect keeps the post-login redirect on this site. Only plain
// local paths are followed; absolute URLs, protocol-relative targets
// ("//host") and backslash variants fall back to the role's landing page.
func resolveRedirect(target string, role models.Role) string {
	if !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") ||
		strings.HasPrefix(target, "/\\") {
		return landingPath(role)
	}
	return target
}

// loginErrorMessage maps the auth error taxonomy to what the form shows.
// Credential problems share one message on purpose.
func loginErrorMessage(err error) string {
	var locked *LockedOutError
	switch {
	case errors.As(err, &locked):
		minutes := int(locked.Remaining.Minutes()) + 1
		return fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", minutes)
	case errors.Is(err, ErrInvalidInput):
		return "Please enter a username (3-50 characters) and a password (at least 6 characters)."
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect username or password."
	default:
		return "Internal server error. Please try again later."
	}
}

// loginErrorStatus maps the auth error taxonomy to HTTP status codes.
func loginErrorStatus(err error) int {
	var locked *LockedOutError
	switch {
	case errors.As(err, &locked):
		return fiber.StatusTooManyRequests
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func ShowLoginPage(c *fiber.Ctx) error {
	sess, err := config.SessionStore().Get(c)
	if err == nil {
		if role, ok := sess.Get("role").(string); ok && sess.Get("user_id") != nil {
			return c.Redirect(landingPath(models.Role(role)))
		}
	}

	data := fiber.Map{
		"Title":     config.AppName + " - Login",
		"CSRFToken": c.Locals("csrf_token"),
		"Redirect":  c.Query("redirect"),
	}
	if sess != nil {
		if msg := config.PopFlash(sess, "error"); msg != "" {
			data["Error"] = msg
			sess.Save()
		}
	}
	return c.Render("auth/login", data, "")
}

// LoginForm handles the browser login form. On success the session id is
// regenerated (fixation defense) before identity is stored.
func LoginForm(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	redirectTo := c.Query("redirect", "")

	user, err := authenticator.Authenticate(username, password, c.IP())
	if err != nil {
		return c.Status(loginErrorStatus(err)).Render("auth/login", fiber.Map{
			"Title":     config.AppName + " - Login",
			"Error":     loginErrorMessage(err),
			"Username":  strings.TrimSpace(username),
			"CSRFToken": c.Locals("csrf_token"),
			"Redirect":  redirectTo,
		}, "")
	}

	if err := establishSession(c, user); err != nil {
		log.Printf("[ERROR] failed to establish session for user %s: %v", user.Username, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to start session")
	}

	return c.Redirect(resolveRedirect(redirectTo, user.Role))
}

// establishSession regenerates the session id and populates identity,
// role and activity timestamps.
func establishSession(c *fiber.Ctx, user *models.User) error {
	sess, err := config.SessionStore().Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}

	now := time.Now().Unix()
	sess.Set("user_id", user.ID)
	sess.Set("username", user.Username)
	sess.Set("role", string(user.Role))
	sess.Set("full_name", user.FullName)
	sess.Set("email", user.Email)
	sess.Set("login_time", now)
	sess.Set("last_activity", now)
	sess.Set("regenerated_at", now)
	config.SetFlash(sess, "success", "Welcome back, "+user.FullName+"!")
	return sess.Save()
}

func LogoutHandler(c *fiber.Ctx) error {
	sess, err := config.SessionStore().Get(c)
	if err == nil {
		if username, ok := sess.Get("username").(string); ok {
			log.Printf("[INFO] logout: user %s from IP %s", username, c.IP())
		}
		if err := sess.Destroy(); err != nil {
			log.Printf("[WARNING] session destroy failed: %v", err)
		}
	}
	return c.Redirect("/auth/login")
}

func ShowProfilePage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	// The session identity has no last_login; read the stored row for it.
	if stored, err := database.GetUserByID(config.GetDB(), user.ID); err == nil {
		user = stored
	}
	return c.Render("auth/profile", fiber.Map{
		"Title":       "Profile - " + config.AppName,
		"CurrentPage": "profile",
		"user":        user,
		"CSRFToken":   c.Locals("csrf_token"),
	})
}

// sessionUser rebuilds the request identity from a live session, or nil
// when the session is absent or idle-expired. Expired sessions are
// destroyed on detection; live ones get their activity stamp slid forward.
func sessionUser(c *fiber.Ctx) *models.User {
	sess, err := config.SessionStore().Get(c)
	if err != nil {
		return nil
	}
	userID, ok := sess.Get("user_id").(string)
	if !ok || userID == "" {
		return nil
	}

	lastActivity, _ := sess.Get("last_activity").(int64)
	if time.Since(time.Unix(lastActivity, 0)) > config.SessionTimeout {
		log.Printf("[INFO] session expired for user %v", sess.Get("username"))
		if err := sess.Destroy(); err != nil {
			log.Printf("[WARNING] session destroy failed: %v", err)
		}
		return nil
	}

	// Periodic id rotation: a long-lived session does not keep one
	// identifier for its whole lifetime.
	regeneratedAt, _ := sess.Get("regenerated_at").(int64)
	if time.Since(time.Unix(regeneratedAt, 0)) > config.SessionRotationInterval {
		if err := sess.Regenerate(); err != nil {
			log.Printf("[WARNING] session regenerate failed: %v", err)
		} else {
			sess.Set("regenerated_at", time.Now().Unix())
		}
	}

	sess.Set("last_activity", time.Now().Unix())
	if err := sess.Save(); err != nil {
		log.Printf("[WARNING] session save failed: %v", err)
	}

	username, _ := sess.Get("username").(string)
	role, _ := sess.Get("role").(string)
	fullName, _ := sess.Get("full_name").(string)
	email, _ := sess.Get("email").(string)
	return &models.User{
		ID:       userID,
		Username: username,
		Role:     models.Role(role),
		FullName: fullName,
		Email:    email,
		IsActive: true,
	}
}

// AuthMiddleware is the access guard: a request proceeds only with a live
// session, or with a valid bearer token on /api paths. Everything else is
// redirected to the login page (web) or refused with 401 (API).
func AuthMiddleware(c *fiber.Ctx) error {
	isAPIRequest := strings.HasPrefix(c.Path(), "/api/")

	user := sessionUser(c)
	if user == nil && isAPIRequest {
		if header := c.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			claims, err := ValidateJWT(strings.TrimPrefix(header, "Bearer "))
			if err == nil {
				user = &models.User{
					ID:       claims.UserID,
					Username: claims.Username,
					Role:     claims.Role,
					FullName: claims.FullName,
					IsActive: true,
				}
			}
		}
	}

	if user == nil {
		if isAPIRequest {
			return c.Status(401).JSON(fiber.Map{"error": "Authentication required"})
		}
		return c.Redirect("/auth/login?redirect=" + c.Path())
	}

	c.Locals("user", user)
	c.Locals("user_id", user.ID)
	c.Locals("username", user.Username)
	c.Locals("role", user.Role)
	return c.Next()
}

// RoleMiddleware allows only the listed roles through. Admins always
// pass: they may act on behalf of teachers. Wrong-role web requests are
// sent to their own landing page, never shown someone else's data.
func RoleMiddleware(allowedRoles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)

		if roleAllowed(user.Role, allowedRoles) {
			return c.Next()
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
		}

		if sess, err := config.SessionStore().Get(c); err == nil {
			config.SetFlash(sess, "error", "You don't have permission to access that page.")
			sess.Save()
		}
		return c.Redirect(landingPath(user.Role))
	}
}

func roleAllowed(role models.Role, allowed []models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
