package models

// TeacherStats backs the teacher dashboard.
type TeacherStats struct {
	TotalStudents int `json:"total_students"`
	TodayRecords  int `json:"today_records"`
}

// StudentStats backs the student dashboard.
type StudentStats struct {
	TotalDays   int     `json:"total_days"`
	PresentDays int     `json:"present_days"`
	AbsentDays  int     `json:"absent_days"`
	LateDays    int     `json:"late_days"`
	Percentage  float64 `json:"attendance_percentage"`
}

// LowAttendanceStudent is a student below the attendance threshold.
type LowAttendanceStudent struct {
	Username    string  `json:"username"`
	FullName    string  `json:"full_name"`
	TotalDays   int     `json:"total_days"`
	PresentDays int     `json:"present_days"`
	Percentage  float64 `json:"percentage"`
}

// MonthCount is the number of attendance records in one month.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// AdminStats backs the admin panel.
type AdminStats struct {
	UsersByRole      map[string]int         `json:"users_by_role"`
	RecordsThisMonth int                    `json:"records_this_month"`
	LowAttendance    []LowAttendanceStudent `json:"low_attendance"`
	MonthlyCounts    []MonthCount           `json:"monthly_counts"`
}
