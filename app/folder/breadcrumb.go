package folder

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

func FolderBreadcrumb(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	path, err := d.Folders.Breadcrumb(c.Request.Context(), userID, c.Param("folderId"))
	if err != nil {
		respond.Error(c, err, "Error al obtener ruta")
		return
	}

	respond.OK(c, "", path)
}
