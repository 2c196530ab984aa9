// Package model defines database models
package model

import "time"

type File struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"not null;index" json:"-"`

	// Original file name before turning it into a storage key
	OriginalName string `gorm:"not null" json:"nombre_original"`

	// Different users may upload files with the same name so the object is kept
	// under {userID}/{fileID}{ext} instead. Never shown to the client
	StorageKey string `gorm:"not null;uniqueIndex" json:"-"`

	Size     int64   `gorm:"not null" json:"size"`
	MimeType string  `gorm:"not null" json:"mime_type"`
	Bucket   string  `gorm:"not null" json:"-"`
	FolderID *string `gorm:"size:36;index" json:"carpeta_id"`

	UploadedAt time.Time `gorm:"not null;index" json:"fecha_subida"`
	SoftDelete
}
