package folder

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type moveBody struct {
	ParentID *string `json:"carpeta_padre_id"`
}

func FolderMove(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var body moveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Cuerpo de la solicitud no válido")
		return
	}

	if err := d.Folders.Reparent(c.Request.Context(), userID, c.Param("folderId"), body.ParentID); err != nil {
		respond.Error(c, err, "Error al mover carpeta")
		return
	}

	respond.OK(c, "Carpeta movida exitosamente", nil)
}
