// Package db opens the metadata database and keeps its schema up to date
package db

import (
	"bitwise74/storage-api/internal/model"
	"bitwise74/storage-api/pkg/util"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSQLiteDSN is used when no database.dsn is configured for sqlite
const DefaultSQLiteDSN = "storage.db?_busy_timeout=5000&_journal_mode=WAL"

// New opens the configured database. driver is either sqlite or postgres.
func New(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = DefaultSQLiteDSN
		}

		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() && !strings.Contains(dsn, "mode=memory") {
			path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", path)
			}
		}

		return Open(sqlite.Open(dsn), logger.Warn)
	case "postgres":
		if dsn == "" {
			return nil, errors.New("database.dsn is required for postgres")
		}

		return Open(postgres.Open(dsn), logger.Warn)
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", driver)
	}
}

// Open connects through dialector with UTC timestamps
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the API uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(model.User{}, model.Folder{}, model.File{}, model.ShareLink{})
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return nil
}
