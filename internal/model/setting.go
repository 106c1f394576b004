package model

import "time"

// Setting is a key/value row for system-wide preferences
// (language, timezone, standard work hours and so on), populated by the
// seed bootstrap.
type Setting struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Key       string    `json:"key" gorm:"type:varchar(100);not null;unique"`
	Value     string    `json:"value" gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
