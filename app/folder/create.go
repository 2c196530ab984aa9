// Package folder contains the folder endpoints
package folder

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	Name     string  `json:"nombre"`
	ParentID *string `json:"carpeta_padre_id"`
	Color    *string `json:"color"`
}

func FolderCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Fail(c, http.StatusBadRequest, "Cuerpo de la solicitud no válido")
		return
	}

	folder, err := d.Folders.Create(c.Request.Context(), userID, body.Name, body.ParentID, body.Color)
	if err != nil {
		respond.Error(c, err, "Error al crear carpeta")
		return
	}

	respond.OK(c, "Carpeta creada exitosamente", folder)
}
