package file

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

func FileList(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var folderID *string
	if v := c.Query("carpeta_id"); v != "" {
		folderID = &v
	}

	files, err := d.Files.List(c.Request.Context(), userID, folderID)
	if err != nil {
		respond.Error(c, err, "Error al listar archivos")
		return
	}

	respond.OK(c, "", files)
}
