package dashboard

import (
	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"
	"attendance-system/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App) {
	app.Get("/dashboard", auth.AuthMiddleware, GetDashboard)

	api := app.Group("/api/dashboard")
	api.Use(auth.AuthMiddleware)
	api.Get("/stats", GetStatsAPI)
}

// GetDashboard renders the role-specific landing page.
func GetDashboard(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	switch user.Role {
	case models.RoleAdmin:
		return c.Redirect("/admin")
	case models.RoleTeacher:
		return teacherDashboard(c, user)
	default:
		return studentDashboard(c, user)
	}
}

func teacherDashboard(c *fiber.Ctx, user *models.User) error {
	db := config.GetDB()

	stats, err := database.GetTeacherStats(db, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load dashboard statistics")
	}

	recent, err := database.GetRecentAttendanceByTeacher(db, user.ID, 10)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load recent attendance")
	}

	success, failure := popFlashes(c)
	return c.Render("dashboard/teacher", fiber.Map{
		"Title":       "Dashboard - " + config.AppName,
		"CurrentPage": "dashboard",
		"user":        user,
		"stats":       stats,
		"recent":      recent,
		"Flash":       success,
		"Error":       failure,
	})
}

func studentDashboard(c *fiber.Ctx, user *models.User) error {
	db := config.GetDB()

	stats, err := database.GetStudentStats(db, user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance summary")
	}

	history, err := database.GetStudentAttendance(db, user.ID, 20)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance history")
	}

	success, failure := popFlashes(c)
	return c.Render("dashboard/student", fiber.Map{
		"Title":       "Dashboard - " + config.AppName,
		"CurrentPage": "dashboard",
		"user":        user,
		"stats":       stats,
		"history":     history,
		"Flash":       success,
		"Error":       failure,
	})
}

// popFlashes consumes both flash kinds, so a wrong-role redirect message
// does not linger in the session.
func popFlashes(c *fiber.Ctx) (success, failure string) {
	sess, err := config.SessionStore().Get(c)
	if err != nil {
		return "", ""
	}
	success = config.PopFlash(sess, "success")
	failure = config.PopFlash(sess, "error")
	if success != "" || failure != "" {
		sess.Save()
	}
	return success, failure
}

// GetStatsAPI returns the caller's own dashboard statistics.
func GetStatsAPI(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	db := config.GetDB()

	switch user.Role {
	case models.RoleAdmin:
		stats, err := database.GetAdminStats(db)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch statistics"})
		}
		return c.JSON(fiber.Map{"success": true, "stats": stats})
	case models.RoleTeacher:
		stats, err := database.GetTeacherStats(db, user.ID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch statistics"})
		}
		return c.JSON(fiber.Map{"success": true, "stats": stats})
	default:
		stats, err := database.GetStudentStats(db, user.ID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch statistics"})
		}
		return c.JSON(fiber.Map{"success": true, "stats": stats})
	}
}
