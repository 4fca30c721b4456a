package database

import (
	"database/sql"
	"fmt"
	"strings"

	"attendance-system/app/models"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

const userColumns = `id, username, password_hash, role, full_name, email, is_active, last_login, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Password, &user.Role, &user.FullName,
		&user.Email, &user.IsActive, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetActiveUserByUsername fetches the unique active user with the given
// username. Returns sql.ErrNoRows for unknown or deactivated users.
func GetActiveUserByUsername(db *sql.DB, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND is_active = true`
	return scanUser(db.QueryRow(query, username))
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.QueryRow(query, userID))
}

// CreateUser inserts a new user, hashing the given plaintext password.
func CreateUser(db *sql.DB, user *models.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (username, password_hash, role, full_name, email)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, is_active, created_at, updated_at`
	return db.QueryRow(query, user.Username, hash, user.Role, user.FullName, user.Email).Scan(
		&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
}

// UserFilters narrows the admin user listing.
type UserFilters struct {
	Role   string
	Search string
}

// GetUsers lists users, optionally filtered by role or a name/username search.
func GetUsers(db *sql.DB, filters UserFilters) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var conditions []string
	var args []interface{}

	if filters.Role != "" {
		args = append(args, filters.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(username ILIKE $%d OR full_name ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY full_name"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Password, &user.Role, &user.FullName,
			&user.Email, &user.IsActive, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetActiveStudents lists active students ordered by name, for the
// attendance entry form. Deactivated students keep their history but do
// not appear here.
func GetActiveStudents(db *sql.DB) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE role = $1 AND is_active = true
			  ORDER BY full_name`
	rows, err := db.Query(query, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.User
	for rows.Next() {
		student := &models.User{}
		if err := rows.Scan(
			&student.ID, &student.Username, &student.Password, &student.Role, &student.FullName,
			&student.Email, &student.IsActive, &student.LastLogin, &student.CreatedAt, &student.UpdatedAt,
		); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// SetUserActive toggles a user's active flag. Deactivated users cannot
// log in but their attendance history is preserved.
func SetUserActive(db *sql.DB, userID string, active bool) error {
	query := `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`
	result, err := db.Exec(query, active, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func UpdateUserPassword(db *sql.DB, userID string, hashedPassword string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.Exec(query, hashedPassword, userID)
	return err
}

const touchLastLoginSQL = `UPDATE users SET last_login = NOW() WHERE id = $1`

// TouchLastLogin stamps login activity on its own column; updated_at
// stays reserved for administrative edits to the row.
func TouchLastLogin(db *sql.DB, userID string) error {
	_, err := db.Exec(touchLastLoginSQL, userID)
	return err
}

// CountUsersByRole returns active user counts grouped by role.
func CountUsersByRole(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT role, COUNT(*) FROM users WHERE is_active = true GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}
