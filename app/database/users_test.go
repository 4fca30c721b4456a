package database

import (
	"strings"
	"testing"
)

func TestTouchLastLoginLeavesUpdatedAtAlone(t *testing.T) {
	if !strings.Contains(touchLastLoginSQL, "last_login = NOW()") {
		t.Errorf("expected a last_login stamp, got %q", touchLastLoginSQL)
	}
	if strings.Contains(touchLastLoginSQL, "updated_at") {
		t.Errorf("login activity must not look like an administrative edit: %q", touchLastLoginSQL)
	}
}

func TestUserColumnsCarryLastLogin(t *testing.T) {
	if !strings.Contains(userColumns, "last_login") {
		t.Errorf("user listings should include last_login, got %q", userColumns)
	}
}
