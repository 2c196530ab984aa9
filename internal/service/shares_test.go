package service

import (
	"bitwise74/storage-api/internal/model"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueShareLink(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.txt", []byte("hello"), nil)

	res, err := f.shares.Issue(ctx, "u1", file.ID, DefaultShareHours)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "http://localhost:8080/api/storage/shared/"))
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), res.ExpiresAt)

	token := strings.TrimPrefix(res.URL, "http://localhost:8080/api/storage/shared/")

	var link model.ShareLink
	require.NoError(t, f.db.Where("token = ?", token).First(&link).Error)
	assert.Equal(t, file.ID, link.FileID)
	assert.Equal(t, "u1", link.UserID)

	other, err := f.shares.Issue(ctx, "u1", file.ID, 1)
	require.NoError(t, err)
	assert.NotEqual(t, res.URL, other.URL)
}

func TestIssueShareLinkValidation(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.txt", []byte("hello"), nil)

	for _, hours := range []int{0, -1, 721} {
		_, err := f.shares.Issue(ctx, "u1", file.ID, hours)
		assert.ErrorIs(t, err, ErrValidation, hours)
	}

	_, err := f.shares.Issue(ctx, "u1", file.ID, 720)
	assert.NoError(t, err)

	_, err = f.shares.Issue(ctx, "u2", file.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.files.Delete(ctx, "u1", file.ID))
	_, err = f.shares.Issue(ctx, "u1", file.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveShareLinkExpiry(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.txt", []byte("hello"), nil)

	res, err := f.shares.Issue(ctx, "u1", file.ID, 1)
	require.NoError(t, err)

	token := res.URL[strings.LastIndex(res.URL, "/")+1:]

	f.clock.Advance(time.Hour - time.Second)

	dl, err := f.shares.Resolve(ctx, token)
	require.NoError(t, err)

	body, err := io.ReadAll(dl.Body)
	dl.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, DispositionAttachment, dl.Disposition)
	assert.Equal(t, "a.txt", dl.Name)
	assert.Equal(t, "text/plain", dl.MimeType)

	// Exactly at the expiry time the link is already dead
	f.clock.Advance(time.Second)
	_, err = f.shares.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)

	f.clock.Advance(time.Second)
	_, err = f.shares.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveShareLinkDeletedFile(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.txt", []byte("hello"), nil)

	res, err := f.shares.Issue(ctx, "u1", file.ID, 24)
	require.NoError(t, err)

	token := res.URL[strings.LastIndex(res.URL, "/")+1:]

	require.NoError(t, f.files.Delete(ctx, "u1", file.ID))

	_, err = f.shares.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, invalidShareMsg, Message(err))

	_, err = f.shares.Resolve(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, invalidShareMsg, Message(err))
}

func TestPurgeExpiredShareLinks(t *testing.T) {
	f := newFixture(t, 1<<20)
	ctx := context.Background()

	file := f.upload(t, "u1", "a.txt", []byte("hello"), nil)

	_, err := f.shares.Issue(ctx, "u1", file.ID, 1)
	require.NoError(t, err)
	long, err := f.shares.Issue(ctx, "u1", file.ID, 48)
	require.NoError(t, err)

	n, err := PurgeExpiredShareLinks(ctx, f.db, f.clock.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var left []model.ShareLink
	require.NoError(t, f.db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.True(t, strings.HasSuffix(long.URL, left[0].Token))
}
