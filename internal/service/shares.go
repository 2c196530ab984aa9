package service

import (
	"bitwise74/storage-api/internal/model"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultShareHours is how long a link lives when the caller doesn't say
const DefaultShareHours = 24

const invalidShareMsg = "Enlace no válido o expirado"

type ShareOptions struct {
	// Public origin links are built on, e.g. https://files.example.com
	BaseURL      string
	MaxHours     int
	QueryTimeout time.Duration
}

type ShareResult struct {
	URL       string    `json:"share_url"`
	ExpiresAt time.Time `json:"expira_en"`
}

// ShareIssuer hands out time limited anonymous download links
type ShareIssuer struct {
	db    *gorm.DB
	files *FileManager
	opts  ShareOptions
	now   func() time.Time
}

func NewShareIssuer(db *gorm.DB, files *FileManager, opts ShareOptions) *ShareIssuer {
	if opts.MaxHours <= 0 {
		opts.MaxHours = 720
	}

	return &ShareIssuer{
		db:    db,
		files: files,
		opts:  opts,
		now:   now,
	}
}

// Issue creates a link to a live file of the user that expires after hours
func (s *ShareIssuer) Issue(ctx context.Context, userID, fileID string, hours int) (*ShareResult, error) {
	if hours <= 0 || hours > s.opts.MaxHours {
		return nil, validation("Horas de expiración no válidas")
	}

	ctx, cancel := withTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	db := s.db.WithContext(ctx)

	if _, err := liveFile(db, userID, fileID); err != nil {
		return nil, err
	}

	t := s.now()
	link := &model.ShareLink{
		Token:     uuid.NewString(),
		FileID:    fileID,
		UserID:    userID,
		ExpiresAt: t.Add(time.Duration(hours) * time.Hour),
		CreatedAt: t,
	}

	if err := db.Create(link).Error; err != nil {
		return nil, unexpected("failed to insert share link", err)
	}

	return &ShareResult{
		URL:       strings.TrimRight(s.opts.BaseURL, "/") + "/api/storage/shared/" + link.Token,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Resolve opens the file behind token for download. Unknown tokens, expired
// links and deleted files all look the same to the caller.
func (s *ShareIssuer) Resolve(ctx context.Context, token string) (*Download, error) {
	qctx, cancel := withTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	db := s.db.WithContext(qctx)

	var links []model.ShareLink

	err := db.
		Where("token = ?", token).
		Limit(1).
		Find(&links).
		Error
	if err != nil {
		return nil, unexpected("failed to look up share link", err)
	}

	if len(links) == 0 || !s.now().Before(links[0].ExpiresAt) {
		return nil, notFound(invalidShareMsg)
	}

	var files []model.File

	err = db.
		Where("id = ? AND user_id = ? AND deleted = ?", links[0].FileID, links[0].UserID, false).
		Limit(1).
		Find(&files).
		Error
	if err != nil {
		return nil, unexpected("failed to look up shared file", err)
	}

	if len(files) == 0 {
		return nil, notFound(invalidShareMsg)
	}

	return s.files.open(ctx, &files[0], DispositionAttachment)
}
