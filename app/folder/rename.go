package folder

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type renameBody struct {
	Name string `json:"nombre"`
}

func FolderRename(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var body renameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Cuerpo de la solicitud no válido")
		return
	}

	if err := d.Folders.Rename(c.Request.Context(), userID, c.Param("folderId"), body.Name); err != nil {
		respond.Error(c, err, "Error al renombrar carpeta")
		return
	}

	respond.OK(c, "Carpeta renombrada exitosamente", nil)
}
