package service

import (
	"bitwise74/storage-api/internal/model"
	"bitwise74/storage-api/internal/storage"
	"context"
	"errors"
	"io"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DispositionInline     = "inline"
	DispositionAttachment = "attachment"
)

type FileOptions struct {
	// Bucket new uploads are written to
	Bucket       string
	QueryTimeout time.Duration
	PutTimeout   time.Duration

	// Directory uploads are spooled to before being sent to the store.
	// Empty means os.TempDir()
	TempDir string
}

// FileManager handles the lifecycle of uploaded files, from the upload to the
// soft delete
type FileManager struct {
	db    *gorm.DB
	store storage.ObjectStore
	quota *QuotaAccountant
	opts  FileOptions
	now   func() time.Time
}

func NewFileManager(db *gorm.DB, store storage.ObjectStore, quota *QuotaAccountant, opts FileOptions) *FileManager {
	return &FileManager{
		db:    db,
		store: store,
		quota: quota,
		opts:  opts,
		now:   now,
	}
}

type UploadInput struct {
	UserID   string
	FolderID *string

	OriginalName string
	Body         io.Reader

	// Exact number of bytes Body yields
	Size int64
}

// Download is an open blob ready to be streamed. Callers must close Body.
type Download struct {
	Body        io.ReadCloser
	Size        int64
	MimeType    string
	Name        string
	Disposition string
}

// Upload stores the blob and records the file. Either both end up persisted
// or neither does.
func (m *FileManager) Upload(ctx context.Context, in *UploadInput) (*model.File, error) {
	name := strings.TrimSpace(in.OriginalName)
	if name == "" || in.Body == nil {
		return nil, validation("No se recibió ningún archivo")
	}

	if in.Size < 0 {
		return nil, validation("Tamaño de archivo no válido")
	}

	folderID := optional(in.FolderID)

	qctx, cancel := withTimeout(ctx, m.opts.QueryTimeout)
	err := checkParent(m.db.WithContext(qctx), in.UserID, folderID, "Carpeta no encontrada")
	cancel()
	if err != nil {
		return nil, err
	}

	if err := m.quota.CheckAndReserve(ctx, in.UserID, in.Size); err != nil {
		return nil, err
	}

	temp, err := os.CreateTemp(m.opts.TempDir, "upload-*")
	if err != nil {
		return nil, unexpected("failed to create temporary file", err)
	}
	defer os.Remove(temp.Name())
	defer temp.Close()

	n, err := io.Copy(temp, io.LimitReader(in.Body, in.Size+1))
	if err != nil {
		return nil, unexpected("failed to copy upload to temporary file", err)
	}

	if n != in.Size {
		return nil, validation("El tamaño del archivo no coincide con el declarado")
	}

	if _, err := temp.Seek(0, io.SeekStart); err != nil {
		return nil, unexpected("failed to rewind temporary file", err)
	}

	meta := map[string]string{
		"original-name": url.QueryEscape(name),
	}

	if detected, err := mimetype.DetectReader(temp); err == nil {
		meta["detected-type"] = detected.String()
	} else {
		zap.L().Warn("Failed to sniff upload content type", zap.Error(err))
	}

	if _, err := temp.Seek(0, io.SeekStart); err != nil {
		return nil, unexpected("failed to rewind temporary file", err)
	}

	fileID := uuid.NewString()
	f := &model.File{
		ID:           fileID,
		UserID:       in.UserID,
		OriginalName: name,
		StorageKey:   StorageKey(in.UserID, fileID, name),
		Size:         in.Size,
		MimeType:     MimeTypeFor(name),
		Bucket:       m.opts.Bucket,
		FolderID:     folderID,
	}

	pctx, cancel := withTimeout(ctx, m.opts.PutTimeout)
	err = m.store.Put(pctx, &storage.PutInput{
		Bucket:      f.Bucket,
		Key:         f.StorageKey,
		Body:        temp,
		Size:        f.Size,
		ContentType: f.MimeType,
		Metadata:    meta,
	})
	cancel()
	if err != nil {
		return nil, unexpected("failed to store object", err)
	}

	err = m.quota.Commit(ctx, in.UserID, in.Size, func(tx *gorm.DB) error {
		// The folder may have been deleted while the blob was uploading
		if err := checkParent(tx, in.UserID, folderID, "Carpeta no encontrada"); err != nil {
			return err
		}

		f.UploadedAt = m.now()
		if err := tx.Create(f).Error; err != nil {
			return unexpected("failed to insert file", err)
		}

		return nil
	})
	if err != nil {
		m.discard(f)
		return nil, err
	}

	return f, nil
}

// discard removes the blob of an upload that didn't make it into the
// database. It runs detached from the request so a cancelled client still
// gets cleaned up after.
func (m *FileManager) discard(f *model.File) {
	timeout := m.opts.PutTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := m.store.Delete(ctx, f.Bucket, f.StorageKey); err != nil {
		zap.L().Error("Failed to delete orphaned object",
			zap.String("bucket", f.Bucket),
			zap.String("key", f.StorageKey),
			zap.Error(err),
		)
	}
}

// List returns the live files in folderID, or at the root when it's nil
func (m *FileManager) List(ctx context.Context, userID string, folderID *string) ([]model.File, error) {
	folderID = optional(folderID)

	ctx, cancel := withTimeout(ctx, m.opts.QueryTimeout)
	defer cancel()

	q := m.db.
		WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false)

	if folderID == nil {
		q = q.Where("folder_id IS NULL")
	} else {
		q = q.Where("folder_id = ?", *folderID)
	}

	files := []model.File{}

	err := q.
		Order("uploaded_at DESC").
		Find(&files).
		Error
	if err != nil {
		return nil, unexpected("failed to list files", err)
	}

	return files, nil
}

// Search looks for live files whose name contains query, ignoring case
func (m *FileManager) Search(ctx context.Context, userID, query string, page, limit int) ([]model.File, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, validation("No se indicó ningún término de búsqueda")
	}

	if page < 0 {
		return nil, validation("Página no válida")
	}

	if limit <= 0 || limit > 250 {
		return nil, validation("Límite no válido")
	}

	ctx, cancel := withTimeout(ctx, m.opts.QueryTimeout)
	defer cancel()

	files := []model.File{}

	err := m.db.
		WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Where(`LOWER(original_name) LIKE ? ESCAPE '\'`, "%"+escapeLikePattern(query)+"%").
		Order("uploaded_at DESC").
		Offset(page * limit).
		Limit(limit).
		Find(&files).
		Error
	if err != nil {
		return nil, unexpected("failed to search files", err)
	}

	return files, nil
}

// Move puts a file into target, or at the root when target is nil
func (m *FileManager) Move(ctx context.Context, userID, fileID string, target *string) error {
	target = optional(target)

	ctx, cancel := withTimeout(ctx, m.opts.QueryTimeout)
	defer cancel()

	db := m.db.WithContext(ctx)

	if _, err := liveFile(db, userID, fileID); err != nil {
		return err
	}

	if err := checkParent(db, userID, target, "Carpeta destino no encontrada"); err != nil {
		return err
	}

	err := db.
		Model(&model.File{}).
		Where("id = ? AND user_id = ?", fileID, userID).
		Update("folder_id", target).
		Error
	if err != nil {
		return unexpected("failed to move file", err)
	}

	return nil
}

// Download opens a live file of the user for inline display
func (m *FileManager) Download(ctx context.Context, userID, fileID string) (*Download, error) {
	qctx, cancel := withTimeout(ctx, m.opts.QueryTimeout)
	f, err := liveFile(m.db.WithContext(qctx), userID, fileID)
	cancel()
	if err != nil {
		return nil, err
	}

	return m.open(ctx, f, DispositionInline)
}

// open streams the blob of f. ctx should be the request context so the
// transfer stops once the client goes away.
func (m *FileManager) open(ctx context.Context, f *model.File, disposition string) (*Download, error) {
	obj, err := m.store.Get(ctx, f.Bucket, f.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			zap.L().Error("File row points to a missing object",
				zap.String("fileID", f.ID),
				zap.String("key", f.StorageKey),
			)
		}

		return nil, unexpected("failed to fetch object", err)
	}

	size := obj.Size
	if size <= 0 {
		size = f.Size
	}

	return &Download{
		Body:        obj.Body,
		Size:        size,
		MimeType:    f.MimeType,
		Name:        f.OriginalName,
		Disposition: disposition,
	}, nil
}

// Delete flags the file as deleted. The blob is kept.
func (m *FileManager) Delete(ctx context.Context, userID, fileID string) error {
	ctx, cancel := withTimeout(ctx, m.opts.QueryTimeout)
	defer cancel()

	db := m.db.WithContext(ctx)

	if _, err := ownedFile(db, userID, fileID); err != nil {
		return err
	}

	err := db.
		Model(&model.File{}).
		Where("id = ? AND user_id = ? AND deleted = ?", fileID, userID, false).
		Updates(map[string]any{
			"deleted":    true,
			"deleted_at": m.now(),
		}).
		Error
	if err != nil {
		return unexpected("failed to delete file", err)
	}

	return nil
}

func (m *FileManager) Stats(ctx context.Context, userID string) (*model.StorageStats, error) {
	count, used, err := m.quota.Usage(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := m.quota.Ceiling(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.StorageStats{
		FileCount:      count,
		UsedBytes:      used,
		TotalBytes:     total,
		AvailableBytes: max(total-used, 0),
	}

	if total > 0 {
		stats.UsedPercent = math.Round(float64(used)/float64(total)*100*100) / 100
	}

	return stats, nil
}

func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
