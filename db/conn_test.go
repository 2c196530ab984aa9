package db

import (
	"bitwise74/storage-api/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New("mysql", "")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewPostgresNeedsDSN(t *testing.T) {
	_, err := New("postgres", "")
	assert.Error(t, err)
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := New("sqlite", "file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))

	for _, m := range []any{&model.User{}, &model.Folder{}, &model.File{}, &model.ShareLink{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}

	// Running it again on an up to date schema is fine
	assert.NoError(t, Migrate(db))
}
