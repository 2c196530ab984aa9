package main

import (
	"bitwise74/storage-api/app"
	"bitwise74/storage-api/config"
	"bitwise74/storage-api/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(viper.GetString("app.log_level")); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := app.NewDeps(ctx)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	if config.MigrateOnly() {
		zap.L().Info("Database migrated")
		return
	}

	if interval := viper.GetDuration("share.cleanup_interval"); interval > 0 {
		service.ShareLinkCleanup(ctx, interval, d.DB)
	}

	router := app.NewRouter(d, app.Options{
		JWTSecret:     viper.GetString("jwt.secret"),
		CORSOrigins:   config.CORSOrigins(),
		RateLimit:     viper.GetInt("security.rate_limit"),
		MaxUploadSize: viper.GetInt64("upload.max_size"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}

	zap.L().Info("Server exited gracefully")
}
