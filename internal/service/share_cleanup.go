package service

import (
	"bitwise74/storage-api/internal/model"
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurgeExpiredShareLinks removes every link that stopped being valid at t
func PurgeExpiredShareLinks(ctx context.Context, db *gorm.DB, t time.Time) (int64, error) {
	res := db.
		WithContext(ctx).
		Where("expires_at <= ?", t.UTC()).
		Delete(&model.ShareLink{})

	return res.RowsAffected, res.Error
}

// ShareLinkCleanup periodically purges expired share links until ctx is
// cancelled. Expired links never resolve anyway, this only keeps the table small.
func ShareLinkCleanup(ctx context.Context, t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Share link cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case tick := <-ticker.C:
				n, err := PurgeExpiredShareLinks(ctx, db, tick)
				if err != nil {
					zap.L().Error("Failed to cleanup expired share links", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Cleaned up expired share links", zap.Int64("count", n))
				}
			}
		}
	}()
}
