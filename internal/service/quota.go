package service

import (
	"bitwise74/storage-api/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const quotaExceededMsg = "Límite de almacenamiento excedido"

// QuotaAccountant answers whether a user can store more bytes. Usage is
// always derived from the live files, there is no running counter to drift.
type QuotaAccountant struct {
	db           *gorm.DB
	ceiling      int64
	queryTimeout time.Duration
	locks        *userLocks
}

// NewQuotaAccountant creates an accountant. ceiling is the premium tier limit
// in bytes, used for users without their own max_storage.
func NewQuotaAccountant(db *gorm.DB, ceiling int64, queryTimeout time.Duration) *QuotaAccountant {
	return &QuotaAccountant{
		db:           db,
		ceiling:      ceiling,
		queryTimeout: queryTimeout,
		locks:        newUserLocks(),
	}
}

type usageRow struct {
	Count int64
	Used  int64
}

func usage(db *gorm.DB, userID string) (int64, int64, error) {
	var r usageRow

	err := db.
		Model(&model.File{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size), 0) AS used").
		Where("user_id = ? AND deleted = ?", userID, false).
		Scan(&r).
		Error
	if err != nil {
		return 0, 0, err
	}

	return r.Count, r.Used, nil
}

func (q *QuotaAccountant) ceilingOf(u *model.User) int64 {
	if u != nil && u.MaxStorage > 0 {
		return u.MaxStorage
	}

	return q.ceiling
}

func (q *QuotaAccountant) user(db *gorm.DB, userID string) (*model.User, error) {
	var users []model.User

	err := db.
		Where("id = ?", userID).
		Limit(1).
		Find(&users).
		Error
	if err != nil || len(users) == 0 {
		return nil, err
	}

	return &users[0], nil
}

// Usage returns the number of live files and the bytes they take
func (q *QuotaAccountant) Usage(ctx context.Context, userID string) (int64, int64, error) {
	ctx, cancel := withTimeout(ctx, q.queryTimeout)
	defer cancel()

	count, used, err := usage(q.db.WithContext(ctx), userID)
	if err != nil {
		return 0, 0, unexpected("failed to compute storage usage", err)
	}

	return count, used, nil
}

// Ceiling returns how many bytes the user may store in total
func (q *QuotaAccountant) Ceiling(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, q.queryTimeout)
	defer cancel()

	u, err := q.user(q.db.WithContext(ctx), userID)
	if err != nil {
		return 0, unexpected("failed to load user", err)
	}

	return q.ceilingOf(u), nil
}

// CheckAndReserve fails with ErrQuotaExceeded when incoming more bytes don't
// fit. Nothing is actually reserved, Commit repeats the check under a lock.
func (q *QuotaAccountant) CheckAndReserve(ctx context.Context, userID string, incoming int64) error {
	ceiling, err := q.Ceiling(ctx, userID)
	if err != nil {
		return err
	}

	_, used, err := q.Usage(ctx, userID)
	if err != nil {
		return err
	}

	if used+incoming > ceiling {
		return quotaExceeded(quotaExceededMsg)
	}

	return nil
}

// Commit runs fn inside a transaction once it's certain incoming bytes still
// fit. Commits of the same user are serialized, and the user row is locked
// for the duration of the transaction on databases that support it.
func (q *QuotaAccountant) Commit(ctx context.Context, userID string, incoming int64, fn func(tx *gorm.DB) error) error {
	unlock := q.locks.lock(userID)
	defer unlock()

	ctx, cancel := withTimeout(ctx, q.queryTimeout)
	defer cancel()

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []model.User

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).
			Limit(1).
			Find(&users).
			Error
		if err != nil {
			return unexpected("failed to lock user row", err)
		}

		var u *model.User
		if len(users) > 0 {
			u = &users[0]
		}

		_, used, err := usage(tx, userID)
		if err != nil {
			return unexpected("failed to compute storage usage", err)
		}

		if used+incoming > q.ceilingOf(u) {
			return quotaExceeded(quotaExceededMsg)
		}

		return fn(tx)
	})
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return unexpected("quota commit failed", err)
		}

		return err
	}

	return nil
}
