package app

import (
	"bitwise74/storage-api/aws"
	"bitwise74/storage-api/cloudflare"
	"bitwise74/storage-api/db"
	"bitwise74/storage-api/internal"
	"bitwise74/storage-api/internal/service"
	"bitwise74/storage-api/internal/storage"
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewStore returns the object store selected by storage.type
func NewStore(ctx context.Context) (storage.ObjectStore, error) {
	switch t := viper.GetString("storage.type"); t {
	case "s3":
		return aws.NewS3(ctx)
	case "r2":
		return cloudflare.NewR2(ctx)
	case "local":
		return storage.NewLocal(viper.GetString("storage.local_path"))
	default:
		return nil, fmt.Errorf("unsupported storage type '%s'", t)
	}
}

// NewDeps opens the database and object store and builds the managers from
// the loaded config. Both buckets are created if missing.
func NewDeps(ctx context.Context) (*internal.Deps, error) {
	conn, err := db.New(viper.GetString("database.driver"), viper.GetString("database.dsn"))
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(conn); err != nil {
		return nil, err
	}

	store, err := NewStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store, %w", err)
	}

	for _, bucket := range []string{viper.GetString("storage.bucket"), viper.GetString("storage.trash_bucket")} {
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket '%s', %w", bucket, err)
		}

		zap.L().Debug("Bucket ready", zap.String("bucket", bucket))
	}

	queryTimeout := viper.GetDuration("database.query_timeout")

	d := &internal.Deps{
		DB:    conn,
		Store: store,
		Quota: service.NewQuotaAccountant(conn, viper.GetInt64("storage.max_usage"), queryTimeout),
	}

	d.Folders = service.NewFolderManager(conn, queryTimeout)
	d.Files = service.NewFileManager(conn, store, d.Quota, service.FileOptions{
		Bucket:       viper.GetString("storage.bucket"),
		QueryTimeout: queryTimeout,
		PutTimeout:   viper.GetDuration("storage.put_timeout"),
	})
	d.Shares = service.NewShareIssuer(conn, d.Files, service.ShareOptions{
		BaseURL:      viper.GetString("share.base_url"),
		MaxHours:     viper.GetInt("share.max_hours"),
		QueryTimeout: queryTimeout,
	})

	return d, nil
}
