package models

import "time"

// Attendance represents one student's attendance on one date. Rows are
// unique per (student_id, date); a re-submission overwrites the existing row.
type Attendance struct {
	ID         string           `json:"id"`
	StudentID  string           `json:"student_id"`
	TeacherID  string           `json:"teacher_id"`
	Date       time.Time        `json:"date"`
	Status     AttendanceStatus `json:"status"`
	Notes      string           `json:"notes,omitempty"`
	RecordedAt time.Time        `json:"recorded_at"`

	// Joined fields for listings
	StudentName     string `json:"student_name,omitempty"`
	StudentUsername string `json:"student_username,omitempty"`
	TeacherName     string `json:"teacher_name,omitempty"`
}

// AttendanceEntry is one line of a batch submission.
type AttendanceEntry struct {
	StudentID string           `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	Notes     string           `json:"notes"`
}

// BatchResult reports the outcome of a batch attendance submission.
// Entries are committed independently; a failed entry does not roll
// back the others.
type BatchResult struct {
	UpdatedCount int `json:"updated_count"`
	FailedCount  int `json:"failed_count"`
}

// ReportFilters narrows the admin attendance report.
type ReportFilters struct {
	DateFrom string
	DateTo   string
	Student  string
	Teacher  string
	Status   string
}

// ReportStats summarizes an attendance report period.
type ReportStats struct {
	TotalRecords   int `json:"total_records"`
	PresentCount   int `json:"present_count"`
	AbsentCount    int `json:"absent_count"`
	LateCount      int `json:"late_count"`
	UniqueStudents int `json:"unique_students"`
	UniqueDays     int `json:"unique_days"`
}
