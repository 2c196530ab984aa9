package service

import (
	"bitwise74/storage-api/internal/model"
	"bitwise74/storage-api/internal/storage"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func countFiles(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&model.File{}).Count(&n).Error)

	return n
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.png", pngBytes, nil)
	assert.Equal(t, "a.png", file.OriginalName)
	assert.Equal(t, "image/png", file.MimeType)
	assert.Equal(t, "u1/"+file.ID+".png", file.StorageKey)
	assert.EqualValues(t, len(pngBytes), file.Size)
	assert.Equal(t, testBucket, file.Bucket)
	assert.Nil(t, file.FolderID)

	obj, err := f.local.Get(ctx, testBucket, file.StorageKey)
	require.NoError(t, err)
	obj.Body.Close()
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, "a.png", obj.Metadata["original-name"])
	assert.Equal(t, "image/png", obj.Metadata["detected-type"])

	dl, err := f.files.Download(ctx, "u1", file.ID)
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, body)
	assert.Equal(t, "image/png", dl.MimeType)
	assert.Equal(t, "a.png", dl.Name)
	assert.Equal(t, DispositionInline, dl.Disposition)
	assert.EqualValues(t, len(pngBytes), dl.Size)

	_, err = f.files.Download(ctx, "u2", file.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadEscapesOriginalNameMetadata(t *testing.T) {
	f := newFixture(t, 1<<20)

	file := f.upload(t, "u1", "informe año.pdf", []byte("%PDF-1.4"), nil)

	obj, err := f.local.Get(context.Background(), testBucket, file.StorageKey)
	require.NoError(t, err)
	obj.Body.Close()

	assert.Equal(t, "informe+a%C3%B1o.pdf", obj.Metadata["original-name"])
}

func TestUploadOverQuotaLeavesNothing(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.files.Upload(context.Background(), &UploadInput{
		UserID:       "u1",
		OriginalName: "big.bin",
		Body:         strings.NewReader("12345678901"),
		Size:         11,
	})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	assert.Zero(t, countFiles(t, f.db))
	assert.Zero(t, f.blobCount(t))
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	_, err := f.files.Upload(ctx, &UploadInput{UserID: "u1", OriginalName: "  ", Body: strings.NewReader("x"), Size: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.files.Upload(ctx, &UploadInput{UserID: "u1", OriginalName: "a.txt", Size: 1})
	assert.ErrorIs(t, err, ErrValidation)

	// Body shorter and longer than announced
	_, err = f.files.Upload(ctx, &UploadInput{UserID: "u1", OriginalName: "a.txt", Body: strings.NewReader("abc"), Size: 5})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.files.Upload(ctx, &UploadInput{UserID: "u1", OriginalName: "a.txt", Body: strings.NewReader("abcdef"), Size: 5})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, countFiles(t, f.db))
	assert.Zero(t, f.blobCount(t))
}

func TestUploadIntoFolder(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	folder := f.mkdir(t, "u1", "Docs", nil)
	file := f.upload(t, "u1", "a.txt", []byte("a"), &folder.ID)
	require.NotNil(t, file.FolderID)
	assert.Equal(t, folder.ID, *file.FolderID)

	foreign := f.mkdir(t, "u2", "Theirs", nil)
	_, err := f.files.Upload(ctx, &UploadInput{UserID: "u1", FolderID: &foreign.ID, OriginalName: "b.txt", Body: strings.NewReader("b"), Size: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.files.Upload(ctx, &UploadInput{UserID: "u1", FolderID: ptr("missing"), OriginalName: "b.txt", Body: strings.NewReader("b"), Size: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.EqualValues(t, 1, countFiles(t, f.db))
	assert.Equal(t, 1, f.blobCount(t))
}

func TestUploadStoreFailureLeavesNoRow(t *testing.T) {
	f := newFixture(t, 1<<20)
	f.store.putErr = errors.New("store is down")

	_, err := f.files.Upload(context.Background(), &UploadInput{UserID: "u1", OriginalName: "a.txt", Body: strings.NewReader("a"), Size: 1})
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.Equal(t, "Error interno del servidor", Message(err))

	assert.Zero(t, countFiles(t, f.db))
}

func TestUploadInsertFailureRemovesBlob(t *testing.T) {
	f := newFixture(t, 1<<20)

	err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_files", func(tx *gorm.DB) {
		if tx.Statement.Table == "files" {
			tx.AddError(errors.New("insert failed"))
		}
	})
	require.NoError(t, err)

	_, err = f.files.Upload(context.Background(), &UploadInput{UserID: "u1", OriginalName: "a.txt", Body: strings.NewReader("a"), Size: 1})
	assert.ErrorIs(t, err, ErrUnexpected)

	assert.Zero(t, countFiles(t, f.db))
	assert.Zero(t, f.blobCount(t))
}

func TestListFiles(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	folder := f.mkdir(t, "u1", "Docs", nil)

	first := f.upload(t, "u1", "first.txt", []byte("1"), nil)
	f.clock.Advance(time.Second)
	second := f.upload(t, "u1", "second.txt", []byte("2"), nil)
	f.clock.Advance(time.Second)
	gone := f.upload(t, "u1", "gone.txt", []byte("3"), nil)
	require.NoError(t, f.files.Delete(ctx, "u1", gone.ID))

	inFolder := f.upload(t, "u1", "in.txt", []byte("4"), &folder.ID)
	f.upload(t, "u2", "theirs.txt", []byte("5"), nil)

	root, err := f.files.List(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, root, 2)
	assert.Equal(t, second.ID, root[0].ID)
	assert.Equal(t, first.ID, root[1].ID)

	docs, err := f.files.List(ctx, "u1", &folder.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, inFolder.ID, docs[0].ID)
}

func TestMoveFile(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	mine := f.mkdir(t, "u1", "Mine", nil)
	theirs := f.mkdir(t, "u2", "Theirs", nil)
	file := f.upload(t, "u1", "a.txt", []byte("a"), nil)

	require.NoError(t, f.files.Move(ctx, "u1", file.ID, &mine.ID))

	var got model.File
	f.reload(t, &got, file.ID)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, mine.ID, *got.FolderID)

	assert.ErrorIs(t, f.files.Move(ctx, "u1", file.ID, &theirs.ID), ErrNotFound)
	f.reload(t, &got, file.ID)
	assert.Equal(t, mine.ID, *got.FolderID)

	assert.ErrorIs(t, f.files.Move(ctx, "u2", file.ID, &theirs.ID), ErrNotFound)

	require.NoError(t, f.files.Move(ctx, "u1", file.ID, nil))
	f.reload(t, &got, file.ID)
	assert.Nil(t, got.FolderID)

	require.NoError(t, f.files.Delete(ctx, "u1", file.ID))
	assert.ErrorIs(t, f.files.Move(ctx, "u1", file.ID, &mine.ID), ErrNotFound)
}

func TestDeleteFile(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.txt", []byte("a"), nil)

	assert.ErrorIs(t, f.files.Delete(ctx, "u2", file.ID), ErrNotFound)
	assert.ErrorIs(t, f.files.Delete(ctx, "u1", "missing"), ErrNotFound)

	deletedAt := f.clock.Now()
	require.NoError(t, f.files.Delete(ctx, "u1", file.ID))

	f.clock.Advance(time.Hour)
	require.NoError(t, f.files.Delete(ctx, "u1", file.ID))

	var got model.File
	f.reload(t, &got, file.ID)
	state, at := got.Status()
	assert.Equal(t, model.StateDeleted, state)
	require.NotNil(t, at)
	assert.WithinDuration(t, deletedAt, *at, time.Millisecond)

	_, err := f.files.Download(ctx, "u1", file.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The blob stays around
	assert.Equal(t, 1, f.blobCount(t))
}

func TestDownloadMissingBlob(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.txt", []byte("a"), nil)
	require.NoError(t, f.local.Delete(ctx, testBucket, file.StorageKey))

	_, err := f.files.Download(ctx, "u1", file.ID)
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestStats(t *testing.T) {
	f := newFixture(t, 300)
	ctx := context.Background()

	f.upload(t, "u1", "a.bin", bytes.Repeat([]byte("a"), 100), nil)
	gone := f.upload(t, "u1", "b.bin", bytes.Repeat([]byte("b"), 50), nil)
	require.NoError(t, f.files.Delete(ctx, "u1", gone.ID))

	stats, err := f.files.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &model.StorageStats{
		FileCount:      1,
		UsedBytes:      100,
		TotalBytes:     300,
		AvailableBytes: 200,
		UsedPercent:    33.33,
	}, stats)

	empty, err := f.files.Stats(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, empty.FileCount)
	assert.Zero(t, empty.UsedPercent)
	assert.EqualValues(t, 300, empty.AvailableBytes)
}

func TestStatsClampsAvailable(t *testing.T) {
	f := newFixture(t, 300)
	ctx := context.Background()

	f.upload(t, "u1", "a.bin", bytes.Repeat([]byte("a"), 200), nil)

	// The ceiling went down after the upload
	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", "u1").Update("max_storage", 100).Error)

	stats, err := f.files.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, stats.AvailableBytes)
	assert.Equal(t, 200.0, stats.UsedPercent)
}

func TestSearchFiles(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	f.upload(t, "u1", "Invoice March.pdf", []byte("1"), nil)
	f.upload(t, "u1", "invoice_april.pdf", []byte("2"), nil)
	f.upload(t, "u1", "100% done.txt", []byte("3"), nil)
	f.upload(t, "u2", "invoice.pdf", []byte("4"), nil)

	res, err := f.files.Search(ctx, "u1", "INVOICE", 0, 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = f.files.Search(ctx, "u1", "_", 0, 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "invoice_april.pdf", res[0].OriginalName)

	res, err = f.files.Search(ctx, "u1", "%", 0, 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "100% done.txt", res[0].OriginalName)

	res, err = f.files.Search(ctx, "u1", "invoice", 1, 1)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	_, err = f.files.Search(ctx, "u1", " ", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.files.Search(ctx, "u1", "x", -1, 10)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.files.Search(ctx, "u1", "x", 0, 251)
	assert.ErrorIs(t, err, ErrValidation)
}
