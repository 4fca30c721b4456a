package database

import (
	"database/sql"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// RunMigrations creates the schema and seeds a default admin account
// when the users table is empty.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	if err := createUsersTable(db); err != nil {
		return err
	}
	if err := createAttendanceTable(db); err != nil {
		return err
	}
	if err := createSettingsTable(db); err != nil {
		return err
	}
	if err := seedAdminUser(db); err != nil {
		return err
	}
	if err := seedDefaultSettings(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createUsersTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL CHECK (role IN ('admin', 'teacher', 'student')),
			full_name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT true,
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to create users table: %v", err)
		return err
	}
	return nil
}

func createAttendanceTable(db *sql.DB) error {
	// The UNIQUE(student_id, date) constraint backs the atomic upsert in
	// UpsertAttendance; concurrent writers for the same pair serialize here
	// instead of racing on an application-level existence check.
	query := `
		CREATE TABLE IF NOT EXISTS attendance (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES users(id),
			teacher_id UUID NOT NULL REFERENCES users(id),
			date DATE NOT NULL,
			status VARCHAR(10) NOT NULL CHECK (status IN ('present', 'absent', 'late')),
			notes TEXT NOT NULL DEFAULT '',
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (student_id, date)
		);
		CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance (date);
		CREATE INDEX IF NOT EXISTS idx_attendance_teacher ON attendance (teacher_id, date);
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to create attendance table: %v", err)
		return err
	}
	return nil
}

func createSettingsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS system_settings (
			setting_key VARCHAR(50) PRIMARY KEY,
			setting_value TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to create system_settings table: %v", err)
		return err
	}
	return nil
}

func seedAdminUser(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-now"), 14)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (username, password_hash, role, full_name)
			  VALUES ($1, $2, 'admin', 'System Administrator')`
	if _, err := db.Exec(query, "admin", string(hash)); err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return err
	}
	log.Println("Seeded default admin account (username: admin) - change its password immediately")
	return nil
}

func seedDefaultSettings(db *sql.DB) error {
	defaults := map[string]string{
		"school_name":      "Student Attendance System",
		"records_per_page": "20",
		"academic_year":    "",
	}
	for key, value := range defaults {
		query := `INSERT INTO system_settings (setting_key, setting_value)
				  VALUES ($1, $2) ON CONFLICT (setting_key) DO NOTHING`
		if _, err := db.Exec(query, key, value); err != nil {
			log.Printf("Failed to seed setting %s: %v", key, err)
			return err
		}
	}
	return nil
}
