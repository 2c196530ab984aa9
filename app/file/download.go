package file

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

// FileDownload streams a file inline. Also serves the preview route.
func FileDownload(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	dl, err := d.Files.Download(c.Request.Context(), userID, c.Param("fileId"))
	if err != nil {
		respond.Error(c, err, "Error al descargar archivo")
		return
	}

	respond.Stream(c, dl)
}
