// Package respond writes the JSON envelope every endpoint answers with:
// {exito, mensaje, datos} plus the request ID on failures
package respond

import (
	"bitwise74/storage-api/internal/service"
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func OK(c *gin.Context, msg string, data any) {
	body := gin.H{"exito": true}

	if msg != "" {
		body["mensaje"] = msg
	}

	if data != nil {
		body["datos"] = data
	}

	c.JSON(http.StatusOK, body)
}

func Fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{
		"exito":     false,
		"mensaje":   msg,
		"requestID": c.GetString("requestID"),
	})
}

// Error answers with the status matching the kind of err. Unexpected errors
// are logged and replaced by fallback so internals never reach the client.
func Error(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrQuotaExceeded):
		Fail(c, http.StatusBadRequest, service.Message(err))
	case errors.Is(err, service.ErrNotFound):
		Fail(c, http.StatusNotFound, service.Message(err))
	default:
		Fail(c, http.StatusInternalServerError, fallback)

		zap.L().Error(fallback,
			zap.String("requestID", c.GetString("requestID")),
			zap.String("userID", c.GetString("userID")),
			zap.Error(err),
		)
	}
}

// Stream sends a download and closes its body
func Stream(c *gin.Context, dl *service.Download) {
	defer dl.Body.Close()

	disposition := mime.FormatMediaType(dl.Disposition, map[string]string{"filename": dl.Name})
	if disposition == "" {
		disposition = dl.Disposition
	}

	c.DataFromReader(http.StatusOK, dl.Size, dl.MimeType, dl.Body, map[string]string{
		"Content-Disposition":    disposition,
		"X-Content-Type-Options": "nosniff",
	})
}
