package attendance

import (
	"time"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/models"

	"github.com/gofiber/fiber/v2"
)

// RecordAttendanceAPI accepts a batch of entries for one date and upserts
// each one. Partial failure does not abort the batch; the counts report
// the split.
func RecordAttendanceAPI(c *fiber.Ctx) error {
	type BatchRequest struct {
		Date    string                   `json:"date"`
		Entries []models.AttendanceEntry `json:"entries"`
	}

	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}
	if len(req.Entries) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "No entries provided"})
	}

	user := c.Locals("user").(*models.User)
	result := database.RecordAttendance(config.GetDB(), user.ID, date, req.Entries)

	return c.JSON(fiber.Map{
		"message":       "Attendance processed",
		"updated_count": result.UpdatedCount,
		"failed_count":  result.FailedCount,
	})
}

func GetAttendanceByDateAPI(c *fiber.Ctx) error {
	dateStr := c.Params("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}

	records, err := database.GetAttendanceByDate(config.GetDB(), date)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch attendance records"})
	}

	return c.JSON(fiber.Map{
		"attendance": records,
		"count":      len(records),
		"date":       dateStr,
	})
}

// GetStudentAttendanceAPI returns one student's history. Students may
// only read their own; teachers and admins may read anyone's.
func GetStudentAttendanceAPI(c *fiber.Ctx) error {
	studentID := c.Params("studentId")
	if studentID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Student ID is required"})
	}

	user := c.Locals("user").(*models.User)
	if user.IsStudent() && user.ID != studentID {
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
	}

	limit := c.QueryInt("limit", 50)
	records, err := database.GetStudentAttendance(config.GetDB(), studentID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch attendance records"})
	}

	return c.JSON(fiber.Map{
		"attendance": records,
		"count":      len(records),
		"student_id": studentID,
	})
}
