package service

import (
	"bitwise74/storage-api/internal/model"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxColorLength = 16

// FolderManager owns the per-user folder tree
type FolderManager struct {
	db           *gorm.DB
	queryTimeout time.Duration
	now          func() time.Time
}

func NewFolderManager(db *gorm.DB, queryTimeout time.Duration) *FolderManager {
	return &FolderManager{
		db:           db,
		queryTimeout: queryTimeout,
		now:          now,
	}
}

// Create adds a folder under parentID, or at the root when parentID is nil
func (m *FolderManager) Create(ctx context.Context, userID, name string, parentID, color *string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation("El nombre de la carpeta es requerido")
	}

	c := model.DefaultFolderColor
	if color != nil && strings.TrimSpace(*color) != "" {
		c = strings.TrimSpace(*color)
	}

	if len(c) > maxColorLength {
		return nil, validation("Color de carpeta no válido")
	}

	parentID = optional(parentID)

	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	db := m.db.WithContext(ctx)

	if err := checkParent(db, userID, parentID, "Carpeta padre no encontrada"); err != nil {
		return nil, err
	}

	t := m.now()
	folder := &model.Folder{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		ParentID:  parentID,
		Color:     c,
		CreatedAt: t,
		UpdatedAt: t,
	}

	if err := db.Create(folder).Error; err != nil {
		return nil, unexpected("failed to insert folder", err)
	}

	return folder, nil
}

// List returns the live folders directly under parentID along with how many
// live files and subfolders each one holds
func (m *FolderManager) List(ctx context.Context, userID string, parentID *string) ([]model.FolderSummary, error) {
	parentID = optional(parentID)

	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	q := m.db.
		WithContext(ctx).
		Model(&model.Folder{}).
		Select(
			"folders.*, "+
				"(SELECT COUNT(*) FROM files WHERE files.folder_id = folders.id AND files.user_id = folders.user_id AND files.deleted = ?) AS file_count, "+
				"(SELECT COUNT(*) FROM folders AS sub WHERE sub.parent_id = folders.id AND sub.user_id = folders.user_id AND sub.deleted = ?) AS folder_count",
			false, false,
		).
		Where("folders.user_id = ? AND folders.deleted = ?", userID, false)

	if parentID == nil {
		q = q.Where("folders.parent_id IS NULL")
	} else {
		q = q.Where("folders.parent_id = ?", *parentID)
	}

	out := []model.FolderSummary{}

	err := q.
		Order("folders.created_at DESC").
		Scan(&out).
		Error
	if err != nil {
		return nil, unexpected("failed to list folders", err)
	}

	return out, nil
}

func (m *FolderManager) Rename(ctx context.Context, userID, folderID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validation("El nombre de la carpeta es requerido")
	}

	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	res := m.db.
		WithContext(ctx).
		Model(&model.Folder{}).
		Where("id = ? AND user_id = ? AND deleted = ?", folderID, userID, false).
		Updates(map[string]any{
			"name":       name,
			"updated_at": m.now(),
		})
	if res.Error != nil {
		return unexpected("failed to rename folder", res.Error)
	}

	if res.RowsAffected == 0 {
		return notFound("Carpeta no encontrada")
	}

	return nil
}

// Delete flags the folder and the files directly inside it as deleted.
// Subfolders are left alone. Deleting an already deleted folder is a no-op.
func (m *FolderManager) Delete(ctx context.Context, userID, folderID string) error {
	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	db := m.db.WithContext(ctx)

	if _, err := ownedFolder(db, userID, folderID); err != nil {
		return err
	}

	t := m.now()
	tombstone := map[string]any{
		"deleted":    true,
		"deleted_at": t,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(&model.Folder{}).
			Where("id = ? AND user_id = ? AND deleted = ?", folderID, userID, false).
			Updates(tombstone).
			Error
		if err != nil {
			return err
		}

		return tx.
			Model(&model.File{}).
			Where("folder_id = ? AND user_id = ? AND deleted = ?", folderID, userID, false).
			Updates(tombstone).
			Error
	})
	if err != nil {
		return unexpected("failed to delete folder", err)
	}

	return nil
}

// Breadcrumb returns the path from the top of the tree down to folderID. The
// walk stops quietly at a missing, foreign or deleted ancestor.
func (m *FolderManager) Breadcrumb(ctx context.Context, userID, folderID string) ([]model.Crumb, error) {
	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	db := m.db.WithContext(ctx)

	path := []model.Crumb{}
	seen := make(map[string]bool)
	next := &folderID

	for next != nil && !seen[*next] {
		seen[*next] = true

		var folders []model.Folder

		err := db.
			Where("id = ? AND user_id = ? AND deleted = ?", *next, userID, false).
			Limit(1).
			Find(&folders).
			Error
		if err != nil {
			return nil, unexpected("failed to walk folder path", err)
		}

		if len(folders) == 0 {
			break
		}

		f := folders[0]
		path = append([]model.Crumb{{ID: f.ID, Name: f.Name}}, path...)
		next = f.ParentID
	}

	return path, nil
}

// Reparent moves a folder under parentID, or to the root when it's nil. A
// folder can't be moved into itself or into one of its descendants.
func (m *FolderManager) Reparent(ctx context.Context, userID, folderID string, parentID *string) error {
	parentID = optional(parentID)

	ctx, cancel := withTimeout(ctx, m.queryTimeout)
	defer cancel()

	db := m.db.WithContext(ctx)

	if _, err := liveFolder(db, userID, folderID); err != nil {
		return err
	}

	if parentID != nil {
		if *parentID == folderID {
			return validation("Una carpeta no puede moverse dentro de sí misma")
		}

		if err := checkParent(db, userID, parentID, "Carpeta destino no encontrada"); err != nil {
			return err
		}

		inside, err := isDescendant(db, userID, *parentID, folderID)
		if err != nil {
			return unexpected("failed to check folder ancestry", err)
		}

		if inside {
			return validation("Una carpeta no puede moverse dentro de una de sus subcarpetas")
		}
	}

	err := db.
		Model(&model.Folder{}).
		Where("id = ? AND user_id = ?", folderID, userID).
		Updates(map[string]any{
			"parent_id":  parentID,
			"updated_at": m.now(),
		}).
		Error
	if err != nil {
		return unexpected("failed to move folder", err)
	}

	return nil
}

// isDescendant reports whether ancestorID shows up while walking up from
// folderID. Deleted folders are walked through too.
func isDescendant(db *gorm.DB, userID, folderID, ancestorID string) (bool, error) {
	seen := make(map[string]bool)
	next := &folderID

	for next != nil && !seen[*next] {
		if *next == ancestorID {
			return true, nil
		}
		seen[*next] = true

		var folders []model.Folder

		err := db.
			Select("id", "parent_id").
			Where("id = ? AND user_id = ?", *next, userID).
			Limit(1).
			Find(&folders).
			Error
		if err != nil {
			return false, err
		}

		if len(folders) == 0 {
			return false, nil
		}

		next = folders[0].ParentID
	}

	return false, nil
}
