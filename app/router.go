// Package app wires the HTTP surface of the storage API
package app

import (
	"bitwise74/storage-api/app/file"
	"bitwise74/storage-api/app/folder"
	"bitwise74/storage-api/app/root"
	"bitwise74/storage-api/app/share"
	"bitwise74/storage-api/internal"
	"bitwise74/storage-api/pkg/middleware"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	JWTSecret   string
	CORSOrigins []string

	// Requests per second allowed for a single client IP
	RateLimit int

	// Upload size limit in bytes
	MaxUploadSize int64
}

func NewRouter(d *internal.Deps, o Options) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     o.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Range"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	jwt := middleware.NewJWTMiddleware(o.JWTSecret)
	premium := middleware.NewPremiumMiddleware(d.DB)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: o.RateLimit,
		Burst:             o.RateLimit * 2,
	})

	// GET /health			-> Service status
	router.GET("/health", root.Health)

	// HEAD /api/heartbeat		-> Used to check if the server is alive
	router.HEAD("/api/heartbeat", root.Heartbeat)

	s := router.Group("/api/storage", rateLimiter)
	{
		// GET /api/storage/shared/:shareToken	-> Downloads a shared file, no auth needed
		s.GET("/shared/:shareToken", func(c *gin.Context) { share.ShareResolve(c, d) })
	}

	p := s.Group("", jwt, premium)
	{
		// POST /api/storage/upload		-> Uploads a file, optionally into a folder
		p.POST("/upload", middleware.BodySizeLimiter(o.MaxUploadSize), func(c *gin.Context) { file.FileUpload(c, d) })

		// GET /api/storage/files		-> Lists the files of a folder or of the root
		p.GET("/files", func(c *gin.Context) { file.FileList(c, d) })

		// GET /api/storage/files/search	-> Searches files by name
		p.GET("/files/search", func(c *gin.Context) { file.FileSearch(c, d) })

		// PUT /api/storage/files/:fileId/move	-> Moves a file to another folder
		p.PUT("/files/:fileId/move", func(c *gin.Context) { file.FileMove(c, d) })

		// GET /api/storage/download/:fileId	-> Streams a file
		p.GET("/download/:fileId", func(c *gin.Context) { file.FileDownload(c, d) })

		// GET /api/storage/preview/:fileId	-> Same as download
		p.GET("/preview/:fileId", func(c *gin.Context) { file.FileDownload(c, d) })

		// DELETE /api/storage/delete/:fileId	-> Deletes a file
		p.DELETE("/delete/:fileId", func(c *gin.Context) { file.FileDelete(c, d) })

		// GET /api/storage/stats		-> Storage usage of the user
		p.GET("/stats", func(c *gin.Context) { file.FileStats(c, d) })

		// POST /api/storage/share/:fileId	-> Creates a temporary public link
		p.POST("/share/:fileId", func(c *gin.Context) { share.ShareCreate(c, d) })
	}

	f := p.Group("/folders")
	{
		// POST /api/storage/folders			-> Creates a folder
		f.POST("", func(c *gin.Context) { folder.FolderCreate(c, d) })

		// GET /api/storage/folders			-> Lists folders under a parent or the root
		f.GET("", func(c *gin.Context) { folder.FolderList(c, d) })

		// PUT /api/storage/folders/:folderId		-> Renames a folder
		f.PUT("/:folderId", func(c *gin.Context) { folder.FolderRename(c, d) })

		// PUT /api/storage/folders/:folderId/move	-> Moves a folder under another one
		f.PUT("/:folderId/move", func(c *gin.Context) { folder.FolderMove(c, d) })

		// DELETE /api/storage/folders/:folderId	-> Deletes a folder and its files
		f.DELETE("/:folderId", func(c *gin.Context) { folder.FolderDelete(c, d) })

		// GET /api/storage/folders/:folderId/breadcrumb	-> Path from the root to a folder
		f.GET("/:folderId/breadcrumb", func(c *gin.Context) { folder.FolderBreadcrumb(c, d) })
	}

	return router
}
