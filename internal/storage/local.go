package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const metaDir = ".meta"

// Local keeps objects on disk under Root/<bucket>/<key>. Content type and
// metadata live in a JSON sidecar under Root/.meta so keys can be anything.
type Local struct {
	Root string
}

type localMeta struct {
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

var _ ObjectStore = (*Local)(nil)

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root, %w", err)
	}

	return &Local{Root: root}, nil
}

func (l *Local) paths(bucket, key string) (string, string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == metaDir || bucket == "." || bucket == ".." {
		return "", "", fmt.Errorf("invalid bucket name '%s'", bucket)
	}

	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("invalid object key '%s'", key)
	}

	return filepath.Join(l.Root, bucket, clean), filepath.Join(l.Root, metaDir, bucket, clean+".json"), nil
}

func (l *Local) EnsureBucket(ctx context.Context, bucket string) error {
	if _, _, err := l.paths(bucket, "probe"); err != nil {
		return err
	}

	return os.MkdirAll(filepath.Join(l.Root, bucket), 0o755)
}

func (l *Local) Put(ctx context.Context, in *PutInput) error {
	objPath, metaPath, err := l.paths(in.Bucket, in.Key)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(objPath), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory, %w", err)
	}

	// Write next to the destination and rename so readers never see half an object
	tmp, err := os.CreateTemp(filepath.Dir(objPath), ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary object, %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, in.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write object, %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	meta, err := json.Marshal(localMeta{
		ContentType: in.ContentType,
		Size:        n,
		Metadata:    in.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to encode object metadata, %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory, %w", err)
	}

	if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
		return fmt.Errorf("failed to write object metadata, %w", err)
	}

	if err := os.Rename(tmp.Name(), objPath); err != nil {
		os.Remove(metaPath)
		return fmt.Errorf("failed to move object into place, %w", err)
	}

	return nil
}

func (l *Local) Get(ctx context.Context, bucket, key string) (*Object, error) {
	objPath, metaPath, err := l.paths(bucket, key)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(objPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}

		return nil, fmt.Errorf("failed to open object, %w", err)
	}

	var meta localMeta

	raw, err := os.ReadFile(metaPath)
	if err == nil {
		err = json.Unmarshal(raw, &meta)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read object metadata, %w", err)
	}

	return &Object{
		Body:        f,
		ContentType: meta.ContentType,
		Size:        meta.Size,
		Metadata:    meta.Metadata,
	}, nil
}

func (l *Local) Delete(ctx context.Context, bucket, key string) error {
	objPath, metaPath, err := l.paths(bucket, key)
	if err != nil {
		return err
	}

	for _, p := range []string{objPath, metaPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete object, %w", err)
		}
	}

	return nil
}
