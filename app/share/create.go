// Package share contains the share link endpoints
package share

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"
	"bitwise74/storage-api/internal/service"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	Hours *int `json:"expiracion_horas"`
}

func ShareCreate(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var body createBody

	// An empty body is fine, the link gets the default lifetime
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		respond.Fail(c, http.StatusBadRequest, "Cuerpo de la solicitud no válido")
		return
	}

	hours := service.DefaultShareHours
	if body.Hours != nil {
		hours = *body.Hours
	}

	res, err := d.Shares.Issue(c.Request.Context(), userID, c.Param("fileId"), hours)
	if err != nil {
		respond.Error(c, err, "Error al generar enlace")
		return
	}

	respond.OK(c, "", res)
}
