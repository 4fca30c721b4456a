package attendance

import (
	"fmt"
	"time"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"
	"attendance-system/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAttendanceRoutes(app *fiber.App) {
	attendance := app.Group("/attendance")
	attendance.Use(auth.AuthMiddleware)
	attendance.Use(auth.RoleMiddleware(models.RoleTeacher))

	attendance.Get("/", AttendancePage)
	attendance.Post("/", SaveAttendanceForm)

	api := app.Group("/api/attendance")
	api.Use(auth.AuthMiddleware)
	api.Post("/", auth.RoleMiddleware(models.RoleTeacher), RecordAttendanceAPI)
	api.Get("/date/:date", auth.RoleMiddleware(models.RoleTeacher), GetAttendanceByDateAPI)
	api.Get("/student/:studentId", GetStudentAttendanceAPI)
}

// AttendancePage renders the entry form for one date, prefilled with any
// existing records so a re-submission overwrites instead of duplicating.
func AttendancePage(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	db := config.GetDB()

	dateStr := c.Query("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		dateStr = time.Now().Format("2006-01-02")
		date, _ = time.Parse("2006-01-02", dateStr)
	}

	students, err := database.GetActiveStudents(db)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load students")
	}

	records, err := database.GetAttendanceByDate(db, date)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load attendance records")
	}

	existing := make(map[string]*models.Attendance)
	for _, record := range records {
		existing[record.StudentID] = record
	}

	data := fiber.Map{
		"Title":       "Record Attendance - " + config.AppName,
		"CurrentPage": "attendance",
		"user":        user,
		"students":    students,
		"date":        dateStr,
		"existing":    existing,
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
	return c.Render("attendance/index", data)
}

// SaveAttendanceForm handles the browser form. Every listed student gets
// a row; a student without an explicit status is recorded as absent.
func SaveAttendanceForm(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	db := config.GetDB()

	dateStr := c.FormValue("attendance_date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return flashAndBack(c, "error", "Please select a valid date.", "/attendance")
	}

	students, err := database.GetActiveStudents(db)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load students")
	}

	entries := make([]models.AttendanceEntry, 0, len(students))
	for _, student := range students {
		entries = append(entries, models.AttendanceEntry{
			StudentID: student.ID,
			Status:    models.AttendanceStatus(c.FormValue("status_" + student.ID)),
			Notes:     c.FormValue("notes_" + student.ID),
		})
	}

	result := database.RecordAttendance(db, user.ID, date, entries)

	if result.UpdatedCount > 0 {
		flashOnly(c, "success", successMessage(result))
	}
	if result.FailedCount > 0 {
		flashOnly(c, "error", failureMessage(result))
	}
	return c.Redirect("/attendance?date=" + dateStr)
}

func successMessage(result models.BatchResult) string {
	return fmt.Sprintf("Attendance saved for %d students.", result.UpdatedCount)
}

func failureMessage(result models.BatchResult) string {
	return fmt.Sprintf("Failed to save %d records.", result.FailedCount)
}

func flashOnly(c *fiber.Ctx, kind, message string) {
	if sess, err := config.SessionStore().Get(c); err == nil {
		config.SetFlash(sess, kind, message)
		sess.Save()
	}
}

func flashAndBack(c *fiber.Ctx, kind, message, target string) error {
	flashOnly(c, kind, message)
	return c.Redirect(target)
}
