package folder

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

func FolderDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Folders.Delete(c.Request.Context(), userID, c.Param("folderId")); err != nil {
		respond.Error(c, err, "Error al eliminar carpeta")
		return
	}

	respond.OK(c, "Carpeta eliminada exitosamente", nil)
}
