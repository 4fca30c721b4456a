package admin

import (
	"database/sql"
	"errors"
	"log"
	"strings"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
)

func GetAdminStatsAPI(c *fiber.Ctx) error {
	stats, err := database.GetAdminStats(config.GetDB())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch statistics"})
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

func GetUsersAPI(c *fiber.Ctx) error {
	filters := database.UserFilters{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}
	users, err := database.GetUsers(config.GetDB(), filters)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

type createUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// createUser provisions an account. Usernames follow the same bounds the
// login form enforces, so every provisioned account can actually log in.
func createUser(in createUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)

	if len(in.Username) < 3 || len(in.Username) > 50 || len(in.Password) < 6 || in.FullName == "" {
		return nil, errors.New("username must be 3-50 characters, password at least 6, and full name is required")
	}
	role := models.Role(in.Role)
	if !role.Valid() {
		return nil, errors.New("role must be admin, teacher or student")
	}

	user := &models.User{
		Username: in.Username,
		Role:     role,
		FullName: in.FullName,
		Email:    strings.TrimSpace(in.Email),
	}
	if err := database.CreateUser(config.GetDB(), user, in.Password); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, errors.New("username is already taken")
		}
		log.Printf("[ERROR] user creation failed: %v", err)
		return nil, errors.New("failed to create user")
	}
	return user, nil
}

func CreateUserAPI(c *fiber.Ctx) error {
	var in createUserInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := createUser(in)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "User created", "user": user})
}

func CreateUserForm(c *fiber.Ctx) error {
	in := createUserInput{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
		Role:     c.FormValue("role"),
		FullName: c.FormValue("full_name"),
		Email:    c.FormValue("email"),
	}

	sess, serr := config.SessionStore().Get(c)
	if user, err := createUser(in); err != nil {
		if serr == nil {
			config.SetFlash(sess, "error", err.Error())
			sess.Save()
		}
	} else if serr == nil {
		config.SetFlash(sess, "success", "User "+user.Username+" created.")
		sess.Save()
	}
	return c.Redirect("/admin/users")
}

func SetUserActiveAPI(c *fiber.Ctx) error {
	type activeRequest struct {
		Active bool `json:"active"`
	}
	var req activeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := setUserActive(c, c.Params("id"), req.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "User updated"})
}

func ToggleUserForm(c *fiber.Ctx) error {
	active := c.FormValue("active") == "true"

	sess, serr := config.SessionStore().Get(c)
	if err := setUserActive(c, c.Params("id"), active); err != nil {
		if serr == nil {
			config.SetFlash(sess, "error", err.Error())
			sess.Save()
		}
	} else if serr == nil {
		config.SetFlash(sess, "success", "User updated.")
		sess.Save()
	}
	return c.Redirect("/admin/users")
}

// setUserActive refuses to let an admin deactivate their own account.
func setUserActive(c *fiber.Ctx, userID string, active bool) error {
	caller := c.Locals("user").(*models.User)
	if caller.ID == userID && !active {
		return errors.New("you cannot deactivate your own account")
	}
	if err := database.SetUserActive(config.GetDB(), userID, active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		log.Printf("[ERROR] user toggle failed for %s: %v", userID, err)
		return errors.New("failed to update user")
	}
	log.Printf("[INFO] user %s set active=%t by admin %s", userID, active, caller.Username)
	return nil
}

func GetReportAPI(c *fiber.Ctx) error {
	filters := reportFiltersFromQuery(c)
	db := config.GetDB()

	records, err := database.GetAttendanceReport(db, filters)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch report"})
	}
	stats, err := database.GetReportStats(db, filters)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch report statistics"})
	}

	return c.JSON(fiber.Map{
		"attendance": records,
		"count":      len(records),
		"stats":      stats,
	})
}

func DeleteAttendanceAPI(c *fiber.Ctx) error {
	if err := deleteAttendance(c, c.Params("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(404).JSON(fiber.Map{"error": "Record not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete record"})
	}
	return c.JSON(fiber.Map{"message": "Record deleted"})
}

func DeleteAttendanceForm(c *fiber.Ctx) error {
	sess, serr := config.SessionStore().Get(c)
	if err := deleteAttendance(c, c.FormValue("attendance_id")); err != nil {
		if serr == nil {
			config.SetFlash(sess, "error", "Failed to delete the record.")
			sess.Save()
		}
	} else if serr == nil {
		config.SetFlash(sess, "success", "Attendance record deleted.")
		sess.Save()
	}
	return c.Redirect("/admin/attendance")
}

func deleteAttendance(c *fiber.Ctx, attendanceID string) error {
	if attendanceID == "" {
		return sql.ErrNoRows
	}
	caller := c.Locals("user").(*models.User)
	if err := database.DeleteAttendance(config.GetDB(), attendanceID); err != nil {
		return err
	}
	log.Printf("[INFO] attendance record %s deleted by admin %s", attendanceID, caller.Username)
	return nil
}

func GetSettingsAPI(c *fiber.Ctx) error {
	settings, err := database.GetAllSettings(config.GetDB())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch settings"})
	}
	return c.JSON(fiber.Map{"settings": settings})
}

func UpdateSettingsAPI(c *fiber.Ctx) error {
	var values map[string]string
	if err := c.BodyParser(&values); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := config.GetDB()
	for key, value := range values {
		if err := database.UpdateSetting(db, key, value); err != nil {
			log.Printf("[ERROR] setting update failed for %s: %v", key, err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to update settings"})
		}
	}
	return c.JSON(fiber.Map{"message": "Settings updated"})
}

// UpdateSettingsForm persists every settings[...] field from the form.
func UpdateSettingsForm(c *fiber.Ctx) error {
	db := config.GetDB()
	settings, err := database.GetAllSettings(db)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load settings")
	}

	args := c.Request().PostArgs()
	for _, setting := range settings {
		field := "settings_" + setting.Key
		if !args.Has(field) {
			continue
		}
		value := string(args.Peek(field))
		if value == setting.Value {
			continue
		}
		if err := database.UpdateSetting(db, setting.Key, value); err != nil {
			log.Printf("[ERROR] setting update failed for %s: %v", setting.Key, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update settings")
		}
	}

	if sess, serr := config.SessionStore().Get(c); serr == nil {
		config.SetFlash(sess, "success", "Settings updated.")
		sess.Save()
	}
	return c.Redirect("/admin/settings")
}
