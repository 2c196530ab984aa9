package folder

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

func FolderList(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var parentID *string
	if v := c.Query("carpeta_padre_id"); v != "" {
		parentID = &v
	}

	folders, err := d.Folders.List(c.Request.Context(), userID, parentID)
	if err != nil {
		respond.Error(c, err, "Error al listar carpetas")
		return
	}

	respond.OK(c, "", folders)
}
