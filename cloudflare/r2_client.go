// Package cloudflare provides a client for interacting with the Cloudflare API.
package cloudflare

import (
	a "bitwise74/storage-api/aws"
	"context"
	"fmt"

	"github.com/spf13/viper"
)

// NewR2 returns an S3 client pointed at the account's R2 endpoint. Credentials
// come from the regular storage.* keys.
func NewR2(ctx context.Context) (*a.S3Client, error) {
	return a.New(ctx, &a.Options{
		Endpoint:           fmt.Sprintf("https://%s.r2.cloudflarestorage.com", viper.GetString("cloudflare.account_id")),
		Region:             "auto",
		AccessKeyID:        viper.GetString("storage.access_key_id"),
		SecretAccessKey:    viper.GetString("storage.secret_access_key"),
		MultipartThreshold: viper.GetInt64("storage.multipart_threshold"),
	})
}
