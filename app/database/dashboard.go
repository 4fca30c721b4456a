package database

import (
	"database/sql"
	"time"

	"attendance-system/app/models"
)

// GetTeacherStats returns the counters on the teacher dashboard.
func GetTeacherStats(db *sql.DB, teacherID string) (*models.TeacherStats, error) {
	stats := &models.TeacherStats{}

	err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = 'student' AND is_active = true`).
		Scan(&stats.TotalStudents)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`SELECT COUNT(*) FROM attendance WHERE date = CURRENT_DATE AND teacher_id = $1`, teacherID).
		Scan(&stats.TodayRecords)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetStudentStats returns a student's own attendance summary.
func GetStudentStats(db *sql.DB, studentID string) (*models.StudentStats, error) {
	stats := &models.StudentStats{}
	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(CASE WHEN status = 'present' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN status = 'absent' THEN 1 ELSE 0 END), 0),
			   COALESCE(SUM(CASE WHEN status = 'late' THEN 1 ELSE 0 END), 0)
		FROM attendance WHERE student_id = $1`
	err := db.QueryRow(query, studentID).Scan(
		&stats.TotalDays, &stats.PresentDays, &stats.AbsentDays, &stats.LateDays,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalDays > 0 {
		stats.Percentage = float64(stats.PresentDays) / float64(stats.TotalDays) * 100
	}
	return stats, nil
}

// GetAdminStats returns the admin panel overview: active users per role,
// this month's record count, low-attendance students and a six month trend.
func GetAdminStats(db *sql.DB) (*models.AdminStats, error) {
	stats := &models.AdminStats{}

	counts, err := CountUsersByRole(db)
	if err != nil {
		return nil, err
	}
	stats.UsersByRole = counts

	err = db.QueryRow(`
		SELECT COUNT(*) FROM attendance
		WHERE date >= date_trunc('month', CURRENT_DATE)
	`).Scan(&stats.RecordsThisMonth)
	if err != nil {
		return nil, err
	}

	stats.LowAttendance, err = getLowAttendanceStudents(db, 80, 5)
	if err != nil {
		return nil, err
	}

	stats.MonthlyCounts, err = getMonthlyCounts(db, 6)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// getLowAttendanceStudents lists active students below the percentage
// threshold, worst first. Students with no recorded days are skipped.
func getLowAttendanceStudents(db *sql.DB, threshold float64, limit int) ([]models.LowAttendanceStudent, error) {
	query := `
		SELECT u.username, u.full_name,
			   COUNT(a.id) AS total_days,
			   COALESCE(SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END), 0) AS present_days,
			   ROUND(SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END)::numeric / COUNT(a.id) * 100, 2) AS percentage
		FROM users u
		JOIN attendance a ON u.id = a.student_id
		WHERE u.role = 'student' AND u.is_active = true
		GROUP BY u.id
		HAVING SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END)::numeric / COUNT(a.id) * 100 < $1
		ORDER BY percentage ASC
		LIMIT $2`
	rows, err := db.Query(query, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.LowAttendanceStudent
	for rows.Next() {
		var s models.LowAttendanceStudent
		if err := rows.Scan(&s.Username, &s.FullName, &s.TotalDays, &s.PresentDays, &s.Percentage); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// getMonthlyCounts returns record counts for the last n months, oldest first.
func getMonthlyCounts(db *sql.DB, months int) ([]models.MonthCount, error) {
	counts := make([]models.MonthCount, 0, months)
	now := time.Now()

	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var count int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM attendance WHERE date >= $1 AND date < $2`,
			monthStart, monthEnd,
		).Scan(&count)
		if err != nil {
			return nil, err
		}
		counts = append(counts, models.MonthCount{Month: monthStart.Format("2006-01"), Count: count})
	}
	return counts, nil
}
