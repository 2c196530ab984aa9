package internal

import (
	"bitwise74/storage-api/internal/service"
	"bitwise74/storage-api/internal/storage"

	"gorm.io/gorm"
)

type Deps struct {
	DB      *gorm.DB
	Store   storage.ObjectStore
	Quota   *service.QuotaAccountant
	Folders *service.FolderManager
	Files   *service.FileManager
	Shares  *service.ShareIssuer
}
