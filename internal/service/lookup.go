package service

import (
	"bitwise74/storage-api/internal/model"
	"errors"

	"gorm.io/gorm"
)

// liveFolder loads a folder the user owns that hasn't been deleted
func liveFolder(db *gorm.DB, userID, folderID string) (*model.Folder, error) {
	var f model.Folder

	err := db.
		Where("id = ? AND user_id = ? AND deleted = ?", folderID, userID, false).
		First(&f).
		Error
	if err != nil {
		return nil, lookupErr(err, "Carpeta no encontrada", "failed to look up folder")
	}

	return &f, nil
}

// ownedFolder is liveFolder without the liveness filter, deletes use it so
// deleting twice is not an error
func ownedFolder(db *gorm.DB, userID, folderID string) (*model.Folder, error) {
	var f model.Folder

	err := db.
		Where("id = ? AND user_id = ?", folderID, userID).
		First(&f).
		Error
	if err != nil {
		return nil, lookupErr(err, "Carpeta no encontrada", "failed to look up folder")
	}

	return &f, nil
}

func liveFile(db *gorm.DB, userID, fileID string) (*model.File, error) {
	var f model.File

	err := db.
		Where("id = ? AND user_id = ? AND deleted = ?", fileID, userID, false).
		First(&f).
		Error
	if err != nil {
		return nil, lookupErr(err, "Archivo no encontrado", "failed to look up file")
	}

	return &f, nil
}

func ownedFile(db *gorm.DB, userID, fileID string) (*model.File, error) {
	var f model.File

	err := db.
		Where("id = ? AND user_id = ?", fileID, userID).
		First(&f).
		Error
	if err != nil {
		return nil, lookupErr(err, "Archivo no encontrado", "failed to look up file")
	}

	return &f, nil
}

// checkParent verifies an optional folder reference. nil means the root.
func checkParent(db *gorm.DB, userID string, folderID *string, notFoundMsg string) error {
	if folderID == nil {
		return nil
	}

	_, err := liveFolder(db, userID, *folderID)
	if errors.Is(err, ErrNotFound) {
		return notFound(notFoundMsg)
	}

	return err
}
