package file

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

func FileDelete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	if err := d.Files.Delete(c.Request.Context(), userID, c.Param("fileId")); err != nil {
		respond.Error(c, err, "Error al eliminar archivo")
		return
	}

	respond.OK(c, "Archivo eliminado exitosamente", nil)
}
