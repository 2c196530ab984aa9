package model

import "time"

// ShareLink grants anonymous read access to one file until ExpiresAt.
// Links are never updated, they just stop resolving once expired.
type ShareLink struct {
	Token     string    `gorm:"primaryKey;size:36"`
	FileID    string    `gorm:"not null;index"`
	UserID    string    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
