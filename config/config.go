// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configDir   = pflag.String("config", ".", "Directory containing config.toml")
	migrateOnly = pflag.Bool("migrate-only", false, "Migrate the database and exit")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "r2", "local"}
	validDrivers      = []string{"sqlite", "postgres"}
)

// ErrMissingJWTSecret is returned when no jwt.secret is configured
var ErrMissingJWTSecret = errors.New("jwt.secret is not set")

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// CORSOrigins returns host.cors_origins. A comma separated string, as it
// comes from the environment, is split too.
func CORSOrigins() []string {
	var out []string

	for _, o := range v.GetStringSlice("host.cors_origins") {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// MigrateOnly reports whether --migrate-only was passed
func MigrateOnly() bool {
	return *migrateOnly
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configDir)

	v.AutomaticEnv()

	bindEnvs()
	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using defaults and environment variables")
	}

	if err := validate(); err != nil {
		if errors.Is(err, ErrMissingJWTSecret) {
			fmt.Println("WARNING: You haven't set a JWT secret. It must be the same secret the identity service signs tokens with.\nIf you need a new one, here's a random secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		}

		return err
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

func bindEnvs() {
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")
	v.BindEnv("database.query_timeout", "database_query_timeout")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.endpoint", "storage_endpoint")
	v.BindEnv("storage.region", "storage_region")
	v.BindEnv("storage.access_key_id", "storage_access_key_id")
	v.BindEnv("storage.secret_access_key", "storage_secret_access_key")
	v.BindEnv("storage.use_path_style", "storage_use_path_style")
	v.BindEnv("storage.bucket", "storage_bucket")
	v.BindEnv("storage.trash_bucket", "storage_trash_bucket")
	v.BindEnv("storage.local_path", "storage_local_path")
	v.BindEnv("storage.max_usage", "storage_max_usage")
	v.BindEnv("storage.put_timeout", "storage_put_timeout")
	v.BindEnv("storage.multipart_threshold", "storage_multipart_threshold")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("share.base_url", "share_base_url")
	v.BindEnv("share.max_hours", "share_max_hours")
	v.BindEnv("share.cleanup_interval", "share_cleanup_interval")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("cloudflare.account_id", "cloudflare_account_id")
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.query_timeout", "10s")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "user-files")
	v.SetDefault("storage.trash_bucket", "user-trash")
	v.SetDefault("storage.local_path", "data")
	// 5 GiB, the premium tier
	v.SetDefault("storage.max_usage", int64(5)<<30)
	v.SetDefault("storage.put_timeout", "5m")
	v.SetDefault("storage.multipart_threshold", int64(64)<<20)

	v.SetDefault("upload.max_size", 500)

	v.SetDefault("share.base_url", "http://localhost:8080")
	v.SetDefault("share.max_hours", 720)
	v.SetDefault("share.cleanup_interval", "24h")

	v.SetDefault("security.rate_limit", 20)
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.driver") == "postgres" && v.GetString("database.dsn") == "" {
		return errors.New("database.dsn is required for postgres")
	}

	if v.GetDuration("database.query_timeout") <= 0 {
		return errors.New("database.query_timeout must be bigger than 0")
	}

	if v.GetString("jwt.secret") == "" {
		return ErrMissingJWTSecret
	}

	switch v.GetString("storage.type") {
	case "s3":
		{
			if v.GetString("storage.access_key_id") == "" {
				return errors.New("access key id can't be empty")
			}
			if v.GetString("storage.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
			if v.GetString("storage.region") == "" {
				return errors.New("region can't be empty")
			}
		}
	case "r2":
		{
			if v.GetString("cloudflare.account_id") == "" {
				return errors.New("account id can't be empty")
			}
			if v.GetString("storage.access_key_id") == "" {
				return errors.New("access key id can't be empty")
			}
			if v.GetString("storage.secret_access_key") == "" {
				return errors.New("secret access key can't be empty")
			}
		}
	case "local":
		{
			if v.GetString("storage.local_path") == "" {
				return errors.New("storage.local_path can't be empty")
			}
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetString("storage.bucket") == "" || v.GetString("storage.trash_bucket") == "" {
		return errors.New("bucket names can't be empty")
	}

	if v.GetString("storage.bucket") == v.GetString("storage.trash_bucket") {
		return errors.New("storage.bucket and storage.trash_bucket must differ")
	}

	if v.GetInt64("storage.max_usage") <= 0 {
		return errors.New("max usage must be bigger than 0")
	}

	if v.GetDuration("storage.put_timeout") <= 0 {
		return errors.New("storage.put_timeout must be bigger than 0")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("max upload size must be bigger than 0")
	}

	if v.GetInt("share.max_hours") <= 0 {
		return errors.New("share.max_hours must be bigger than 0")
	}

	if !strings.HasPrefix(v.GetString("share.base_url"), "http://") && !strings.HasPrefix(v.GetString("share.base_url"), "https://") {
		return errors.New("share.base_url must be an http(s) URL")
	}

	if v.GetDuration("share.cleanup_interval") < 0 {
		return errors.New("share.cleanup_interval can't be negative")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	return nil
}
