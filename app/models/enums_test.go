package models

import "testing"

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleTeacher, RoleStudent} {
		if !role.Valid() {
			t.Errorf("role %q should be valid", role)
		}
	}
	for _, role := range []Role{"", "superadmin", "Teacher", "ADMIN"} {
		if role.Valid() {
			t.Errorf("role %q should be invalid", role)
		}
	}
}

func TestAttendanceStatusValid(t *testing.T) {
	for _, status := range []AttendanceStatus{Present, Absent, Late} {
		if !status.Valid() {
			t.Errorf("status %q should be valid", status)
		}
	}
	for _, status := range []AttendanceStatus{"", "excused", "Present", "PRESENT"} {
		if status.Valid() {
			t.Errorf("status %q should be invalid", status)
		}
	}
}
