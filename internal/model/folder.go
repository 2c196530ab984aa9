package model

import "time"

// DefaultFolderColor is applied when a folder is created without a color tag
const DefaultFolderColor = "#C9003E"

type Folder struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"not null;index" json:"-"`
	Name   string `gorm:"not null" json:"nombre"`

	// nil for folders at the root of the user's tree
	ParentID *string `gorm:"size:36;index" json:"carpeta_padre_id"`
	Color    string  `gorm:"size:16;not null" json:"color"`

	CreatedAt time.Time `json:"fecha_creacion"`
	UpdatedAt time.Time `json:"fecha_modificacion"`
	SoftDelete
}

// FolderSummary is a folder listing entry with the number of live direct children
type FolderSummary struct {
	Folder
	FileCount   int64 `json:"total_archivos"`
	FolderCount int64 `json:"total_subcarpetas"`
}

// Crumb is one step of the path from the root to a folder
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}
