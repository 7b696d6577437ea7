package models

import "time"

// Config stores application settings that must survive restarts,
// like the generated JWT signing secret and token encryption key.
type Config struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
