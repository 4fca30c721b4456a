package admin

import (
	"time"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"
	"attendance-system/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	admin := app.Group("/admin")
	admin.Use(auth.AuthMiddleware)
	admin.Use(auth.RoleMiddleware(models.RoleAdmin))

	admin.Get("/", AdminPanelPage)
	admin.Get("/users", UsersPage)
	admin.Post("/users", CreateUserForm)
	admin.Post("/users/:id/toggle", ToggleUserForm)
	admin.Get("/attendance", AttendanceReportPage)
	admin.Post("/attendance/delete", DeleteAttendanceForm)
	admin.Get("/settings", SettingsPage)
	admin.Post("/settings", UpdateSettingsForm)

	api := app.Group("/api/admin")
	api.Use(auth.AuthMiddleware)
	api.Use(auth.RoleMiddleware(models.RoleAdmin))
	api.Get("/stats", GetAdminStatsAPI)
	api.Get("/users", GetUsersAPI)
	api.Post("/users", CreateUserAPI)
	api.Put("/users/:id/active", SetUserActiveAPI)
	api.Get("/attendance", GetReportAPI)
	api.Delete("/attendance/:id", DeleteAttendanceAPI)
	api.Get("/settings", GetSettingsAPI)
	api.Put("/settings", UpdateSettingsAPI)
}

func AdminPanelPage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	stats, err := database.GetAdminStats(config.GetDB())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load panel statistics")
	}

	data := fiber.Map{
		"Title":       "Admin Panel - " + config.AppName,
		"CurrentPage": "admin",
		"user":        user,
		"stats":       stats,
	}
	if sess, serr := config.SessionStore().Get(c); serr == nil {
		if msg := config.PopFlash(sess, "success"); msg != "" {
			data["Success"] = msg
			sess.Save()
		}
	}
	return c.Render("admin/index", data)
}

func UsersPage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	filters := database.UserFilters{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}
	users, err := database.GetUsers(config.GetDB(), filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load users")
	}

	data := fiber.Map{
		"Title":       "Manage Users - " + config.AppName,
		"CurrentPage": "admin-users",
		"user":        user,
		"users":       users,
		"roleFilter":  filters.Role,
		"search":      filters.Search,
		"CSRFToken":   c.Locals("csrf_token"),
	}
	if sess, serr := config.SessionStore().Get(c); serr == nil {
		if msg := config.PopFlash(sess, "success"); msg != "" {
			data["Success"] = msg
			sess.Save()
		}
		if msg := config.PopFlash(sess, "error"); msg != "" {
			data["Error"] = msg
			sess.Save()
		}
	}
	return c.Render("admin/users", data)
}

func AttendanceReportPage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	filters := reportFiltersFromQuery(c)
	db := config.GetDB()

	records, err := database.GetAttendanceReport(db, filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance report")
	}
	stats, err := database.GetReportStats(db, filters)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load report statistics")
	}

	data := fiber.Map{
		"Title":       "Attendance Report - " + config.AppName,
		"CurrentPage": "admin-attendance",
		"user":        user,
		"records":     records,
		"stats":       stats,
		"filters":     filters,
		"CSRFToken":   c.Locals("csrf_token"),
	}
	if sess, serr := config.SessionStore().Get(c); serr == nil {
		if msg := config.PopFlash(sess, "success"); msg != "" {
			data["Success"] = msg
			sess.Save()
		}
	}
	return c.Render("admin/attendance", data)
}

func SettingsPage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	settings, err := database.GetAllSettings(config.GetDB())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load settings")
	}

	data := fiber.Map{
		"Title":       "System Settings - " + config.AppName,
		"CurrentPage": "admin-settings",
		"user":        user,
		"settings":    settings,
		"CSRFToken":   c.Locals("csrf_token"),
	}
	if sess, serr := config.SessionStore().Get(c); serr == nil {
		if msg := config.PopFlash(sess, "success"); msg != "" {
			data["Success"] = msg
			sess.Save()
		}
	}
	return c.Render("admin/settings", data)
}

// reportFiltersFromQuery defaults the range to the current month, like
// the report page always shows something useful.
func reportFiltersFromQuery(c *fiber.Ctx) models.ReportFilters {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	return models.ReportFilters{
		DateFrom: c.Query("date_from", monthStart.Format("2006-01-02")),
		DateTo:   c.Query("date_to", now.Format("2006-01-02")),
		Student:  c.Query("student"),
		Teacher:  c.Query("teacher"),
		Status:   c.Query("status"),
	}
}
