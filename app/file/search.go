package file

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
)

var validLimits = []int{10, 20, 50, 100, 250}

func FileSearch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || !slices.Contains(validLimits, limit) {
		respond.Fail(c, http.StatusBadRequest, "Límite no válido")
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		respond.Fail(c, http.StatusBadRequest, "Página no válida")
		return
	}

	files, err := d.Files.Search(c.Request.Context(), userID, c.Query("query"), page, limit)
	if err != nil {
		respond.Error(c, err, "Error al buscar archivos")
		return
	}

	respond.OK(c, "", files)
}
