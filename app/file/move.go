package file

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type moveBody struct {
	// nil or empty moves the file to the root
	FolderID *string `json:"carpeta_id"`
}

func FileMove(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var body moveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Cuerpo de la solicitud no válido")
		return
	}

	if err := d.Files.Move(c.Request.Context(), userID, c.Param("fileId"), body.FolderID); err != nil {
		respond.Error(c, err, "Error al mover archivo")
		return
	}

	respond.OK(c, "Archivo movido exitosamente", nil)
}
