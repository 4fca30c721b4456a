package auth

import (
	"log"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthAPIRoutes(app *fiber.App) {
	api := app.Group("/api/auth")
	api.Post("/login", LoginAPI)
	api.Post("/logout", LogoutAPI)

	api.Use(AuthMiddleware)
	api.Get("/me", CurrentUserAPI)
	api.Post("/change-password", ChangePasswordAPI)
}

// LoginAPI authenticates a JSON client. It establishes a browser session
// and additionally returns a bearer token for programmatic callers.
func LoginAPI(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	user, err := authenticator.Authenticate(req.Username, req.Password, c.IP())
	if err != nil {
		return c.Status(loginErrorStatus(err)).JSON(fiber.Map{"error": loginErrorMessage(err)})
	}

	if err := establishSession(c, user); err != nil {
		log.Printf("[ERROR] failed to establish session for user %s: %v", user.Username, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to start session"})
	}

	token, err := GenerateJWT(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func LogoutAPI(c *fiber.Ctx) error {
	sess, err := config.SessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("[WARNING] session destroy failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func CurrentUserAPI(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(fiber.Map{"user": user})
}

// ChangePasswordForm handles the profile page form.
func ChangePasswordForm(c *fiber.Ctx) error {
	current := c.FormValue("current_password")
	newPassword := c.FormValue("new_password")

	if err := changePassword(c, current, newPassword); err != nil {
		if sess, serr := config.SessionStore().Get(c); serr == nil {
			config.SetFlash(sess, "error", err.Error())
			sess.Save()
		}
		return c.Redirect("/auth/profile")
	}

	if sess, err := config.SessionStore().Get(c); err == nil {
		config.SetFlash(sess, "success", "Password changed successfully.")
		sess.Save()
	}
	return c.Redirect("/auth/profile")
}

func ChangePasswordAPI(c *fiber.Ctx) error {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	if err := changePassword(c, req.CurrentPassword, req.NewPassword); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

func changePassword(c *fiber.Ctx, current, newPassword string) error {
	user := c.Locals("user").(*models.User)

	if len(newPassword) < 6 {
		return fiber.NewError(400, "New password must be at least 6 characters")
	}

	stored, err := database.GetUserByID(config.GetDB(), user.ID)
	if err != nil {
		log.Printf("[ERROR] password change lookup failed for user %s: %v", user.Username, err)
		return fiber.NewError(500, "Internal server error")
	}
	if !CheckPasswordHash(current, stored.Password) {
		return fiber.NewError(400, "Current password is incorrect")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fiber.NewError(500, "Internal server error")
	}
	if err := database.UpdateUserPassword(config.GetDB(), user.ID, hash); err != nil {
		log.Printf("[ERROR] password update failed for user %s: %v", user.Username, err)
		return fiber.NewError(500, "Internal server error")
	}

	log.Printf("[INFO] password changed: user %s from IP %s", user.Username, c.IP())
	return nil
}
