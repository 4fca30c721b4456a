package models

import "time"

// Setting is one key/value pair of system configuration.
type Setting struct {
	Key       string    `json:"setting_key"`
	Value     string    `json:"setting_value"`
	UpdatedAt time.Time `json:"updated_at"`
}
