package database

import (
	"database/sql"

	"attendance-system/app/models"
)

// GetAllSettings returns every system setting ordered by key.
func GetAllSettings(db *sql.DB) ([]*models.Setting, error) {
	rows, err := db.Query(`SELECT setting_key, setting_value, updated_at FROM system_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		setting := &models.Setting{}
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

// UpdateSetting upserts one key/value pair.
func UpdateSetting(db *sql.DB, key, value string) error {
	query := `
		INSERT INTO system_settings (setting_key, setting_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (setting_key)
		DO UPDATE SET setting_value = EXCLUDED.setting_value, updated_at = NOW()`
	_, err := db.Exec(query, key, value)
	return err
}
