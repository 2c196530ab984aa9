package file

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

func FileStats(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	stats, err := d.Files.Stats(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err, "Error al obtener estadísticas")
		return
	}

	respond.OK(c, "", stats)
}
