package share

import (
	"bitwise74/storage-api/app/respond"
	"bitwise74/storage-api/internal"

	"github.com/gin-gonic/gin"
)

// ShareResolve is public, the token is the only credential
func ShareResolve(c *gin.Context, d *internal.Deps) {
	dl, err := d.Shares.Resolve(c.Request.Context(), c.Param("shareToken"))
	if err != nil {
		respond.Error(c, err, "Error al descargar archivo")
		return
	}

	respond.Stream(c, dl)
}
