package models

import "time"

type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Password  string     `json:"-"` // bcrypt hash, never serialized
	Role      Role       `json:"role"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// CanRecordAttendance reports whether the user may enter attendance.
// Admins can enter data on behalf of teachers.
func (u *User) CanRecordAttendance() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
