package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"attendance-system/app/models"
)

// UpsertAttendance writes one attendance row atomically. The unique
// constraint on (student_id, date) turns a conflicting insert into an
// update, so concurrent submissions for the same pair cannot produce
// duplicates. Last writer wins on status, notes and teacher_id.
func UpsertAttendance(db *sql.DB, record *models.Attendance) error {
	query := `
		INSERT INTO attendance (student_id, teacher_id, date, status, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (student_id, date)
		DO UPDATE SET status = EXCLUDED.status,
					  notes = EXCLUDED.notes,
					  teacher_id = EXCLUDED.teacher_id,
					  recorded_at = NOW()
		RETURNING id, recorded_at`
	return db.QueryRow(query,
		record.StudentID, record.TeacherID, record.Date, record.Status, record.Notes,
	).Scan(&record.ID, &record.RecordedAt)
}

// normalizeEntry applies the defaulting rule for batch submissions: a
// listed student with no explicit status is recorded as absent.
func normalizeEntry(entry models.AttendanceEntry) models.AttendanceEntry {
	if entry.Status == "" {
		entry.Status = models.Absent
	}
	entry.Notes = strings.TrimSpace(entry.Notes)
	return entry
}

// RecordAttendance upserts one row per entry for the given date. Entries
// are committed independently; a failure for one student does not roll
// back the others, it only increments FailedCount. Re-submitting the same
// batch overwrites rows instead of duplicating them.
func RecordAttendance(db *sql.DB, teacherID string, date time.Time, entries []models.AttendanceEntry) models.BatchResult {
	var result models.BatchResult

	for _, entry := range entries {
		entry = normalizeEntry(entry)
		if entry.StudentID == "" || !entry.Status.Valid() {
			result.FailedCount++
			continue
		}

		record := &models.Attendance{
			StudentID: entry.StudentID,
			TeacherID: teacherID,
			Date:      date,
			Status:    entry.Status,
			Notes:     entry.Notes,
		}
		if err := UpsertAttendance(db, record); err != nil {
			log.Printf("[WARNING] attendance upsert failed for student %s on %s: %v",
				entry.StudentID, date.Format("2006-01-02"), err)
			result.FailedCount++
			continue
		}
		result.UpdatedCount++
	}
	return result
}

const attendanceJoinColumns = `
	a.id, a.student_id, a.teacher_id, a.date, a.status, a.notes, a.recorded_at,
	s.full_name, s.username, t.full_name`

func scanAttendanceRows(rows *sql.Rows) ([]*models.Attendance, error) {
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		record := &models.Attendance{}
		if err := rows.Scan(
			&record.ID, &record.StudentID, &record.TeacherID, &record.Date,
			&record.Status, &record.Notes, &record.RecordedAt,
			&record.StudentName, &record.StudentUsername, &record.TeacherName,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetAttendanceByDate returns all records for a date, regardless of which
// teacher recorded them. Used to prefill the entry form.
func GetAttendanceByDate(db *sql.DB, date time.Time) ([]*models.Attendance, error) {
	query := `
		SELECT ` + attendanceJoinColumns + `
		FROM attendance a
		JOIN users s ON a.student_id = s.id
		JOIN users t ON a.teacher_id = t.id
		WHERE a.date = $1
		ORDER BY s.full_name`
	rows, err := db.Query(query, date)
	if err != nil {
		return nil, err
	}
	return scanAttendanceRows(rows)
}

// GetRecentAttendanceByTeacher returns the teacher's latest entries for
// the dashboard.
func GetRecentAttendanceByTeacher(db *sql.DB, teacherID string, limit int) ([]*models.Attendance, error) {
	query := `
		SELECT ` + attendanceJoinColumns + `
		FROM attendance a
		JOIN users s ON a.student_id = s.id
		JOIN users t ON a.teacher_id = t.id
		WHERE a.teacher_id = $1
		ORDER BY a.date DESC, a.recorded_at DESC
		LIMIT $2`
	rows, err := db.Query(query, teacherID, limit)
	if err != nil {
		return nil, err
	}
	return scanAttendanceRows(rows)
}

// GetStudentAttendance returns a student's own history, newest first.
func GetStudentAttendance(db *sql.DB, studentID string, limit int) ([]*models.Attendance, error) {
	query := `
		SELECT ` + attendanceJoinColumns + `
		FROM attendance a
		JOIN users s ON a.student_id = s.id
		JOIN users t ON a.teacher_id = t.id
		WHERE a.student_id = $1
		ORDER BY a.date DESC
		LIMIT $2`
	rows, err := db.Query(query, studentID, limit)
	if err != nil {
		return nil, err
	}
	return scanAttendanceRows(rows)
}

// buildReportQuery assembles the filtered report query. Filters map to
// parameterized conditions; no user input is interpolated into the SQL.
func buildReportQuery(filters models.ReportFilters) (string, []interface{}) {
	query := `
		SELECT ` + attendanceJoinColumns + `
		FROM attendance a
		JOIN users s ON a.student_id = s.id
		JOIN users t ON a.teacher_id = t.id
		WHERE a.date BETWEEN $1 AND $2`
	args := []interface{}{filters.DateFrom, filters.DateTo}

	if filters.Student != "" {
		args = append(args, "%"+filters.Student+"%")
		query += fmt.Sprintf(" AND (s.username ILIKE $%d OR s.full_name ILIKE $%d)", len(args), len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if filters.Teacher != "" {
		args = append(args, "%"+filters.Teacher+"%")
		query += fmt.Sprintf(" AND (t.username ILIKE $%d OR t.full_name ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY a.date DESC, s.username ASC"
	return query, args
}

// GetAttendanceReport returns records matching the admin report filters.
func GetAttendanceReport(db *sql.DB, filters models.ReportFilters) ([]*models.Attendance, error) {
	query, args := buildReportQuery(filters)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	return scanAttendanceRows(rows)
}

// GetReportStats summarizes the filtered period.
func GetReportStats(db *sql.DB, filters models.ReportFilters) (*models.ReportStats, error) {
	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN a.status = 'absent' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN a.status = 'late' THEN 1 ELSE 0 END), 0),
			   COUNT(DISTINCT a.student_id),
			   COUNT(DISTINCT a.date)
		FROM attendance a
		JOIN users s ON a.student_id = s.id
		WHERE a.date BETWEEN $1 AND $2`
	args := []interface{}{filters.DateFrom, filters.DateTo}

	if filters.Student != "" {
		args = append(args, "%"+filters.Student+"%")
		query += fmt.Sprintf(" AND (s.username ILIKE $%d OR s.full_name ILIKE $%d)", len(args), len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}

	stats := &models.ReportStats{}
	err := db.QueryRow(query, args...).Scan(
		&stats.TotalRecords, &stats.PresentCount, &stats.AbsentCount,
		&stats.LateCount, &stats.UniqueStudents, &stats.UniqueDays,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteAttendance removes one record. Admin-only; this is the explicit
// administrative delete, records are never removed through the entry flow.
func DeleteAttendance(db *sql.DB, attendanceID string) error {
	result, err := db.Exec(`DELETE FROM attendance WHERE id = $1`, attendanceID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
