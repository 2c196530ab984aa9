package service

import (
	"bitwise74/storage-api/db/dbtest"
	"bitwise74/storage-api/internal/model"
	"bitwise74/storage-api/internal/storage"
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testBucket = "user-files"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

// failingStore wraps a real store and fails puts on demand
type failingStore struct {
	storage.ObjectStore
	putErr error
}

func (s *failingStore) Put(ctx context.Context, in *storage.PutInput) error {
	if s.putErr != nil {
		return s.putErr
	}

	return s.ObjectStore.Put(ctx, in)
}

type fixture struct {
	db      *gorm.DB
	local   *storage.Local
	store   *failingStore
	clock   *testClock
	quota   *QuotaAccountant
	folders *FolderManager
	files   *FileManager
	shares  *ShareIssuer
}

func newFixture(t *testing.T, ceiling int64) *fixture {
	t.Helper()

	db := dbtest.New(t)

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, local.EnsureBucket(context.Background(), testBucket))

	f := &fixture{
		db:    db,
		local: local,
		store: &failingStore{ObjectStore: local},
		clock: &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	f.quota = NewQuotaAccountant(db, ceiling, 5*time.Second)

	f.folders = NewFolderManager(db, 5*time.Second)
	f.folders.now = f.clock.Now

	f.files = NewFileManager(db, f.store, f.quota, FileOptions{
		Bucket:       testBucket,
		QueryTimeout: 5 * time.Second,
		PutTimeout:   5 * time.Second,
		TempDir:      t.TempDir(),
	})
	f.files.now = f.clock.Now

	f.shares = NewShareIssuer(db, f.files, ShareOptions{
		BaseURL:      "http://localhost:8080",
		MaxHours:     720,
		QueryTimeout: 5 * time.Second,
	})
	f.shares.now = f.clock.Now

	for _, id := range []string{"u1", "u2"} {
		require.NoError(t, db.Create(&model.User{ID: id, Premium: true}).Error)
	}

	return f
}

func (f *fixture) upload(t *testing.T, userID, name string, body []byte, folderID *string) *model.File {
	t.Helper()

	file, err := f.files.Upload(context.Background(), &UploadInput{
		UserID:       userID,
		FolderID:     folderID,
		OriginalName: name,
		Body:         bytes.NewReader(body),
		Size:         int64(len(body)),
	})
	require.NoError(t, err)

	return file
}

func (f *fixture) mkdir(t *testing.T, userID, name string, parentID *string) *model.Folder {
	t.Helper()

	folder, err := f.folders.Create(context.Background(), userID, name, parentID, nil)
	require.NoError(t, err)

	return folder
}

// blobCount counts the objects stored in the test bucket
func (f *fixture) blobCount(t *testing.T) int {
	t.Helper()

	n := 0
	err := filepath.WalkDir(filepath.Join(f.local.Root, testBucket), func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			n++
		}

		return nil
	})
	require.NoError(t, err)

	return n
}

func (f *fixture) reload(t *testing.T, dest any, id string) {
	t.Helper()

	// gorm adds the primary key of a non-zero dest to the query
	reflect.ValueOf(dest).Elem().SetZero()
	require.NoError(t, f.db.Where("id = ?", id).First(dest).Error)
}

func ptr(s string) *string {
	return &s
}
