package file

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"
	"bitwise74/storage-api/internal/service"
	"bitwise74/storage-api/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func FileUpload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "http: request body too large") {
			respond.Fail(c, http.StatusRequestEntityTooLarge, "El archivo excede el tamaño máximo permitido")
			return
		}

		respond.Fail(c, http.StatusBadRequest, "No se recibió ningún archivo")
		return
	}

	code, f, err := validators.FileValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			respond.Fail(c, code, "Error al subir archivo")

			zap.L().Error("Failed to open multipart file", zap.String("requestID", requestID), zap.Error(err))
			return
		}

		respond.Fail(c, code, err.Error())
		return
	}
	defer f.Close()

	var folderID *string
	if v := c.PostForm("carpeta_id"); v != "" {
		folderID = &v
	}

	file, err := d.Files.Upload(c.Request.Context(), &service.UploadInput{
		UserID:       userID,
		FolderID:     folderID,
		OriginalName: fh.Filename,
		Body:         f,
		Size:         fh.Size,
	})
	if err != nil {
		respond.Error(c, err, "Error al subir archivo")
		return
	}

	respond.OK(c, "Archivo subido exitosamente", file)
}
