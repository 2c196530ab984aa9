package middleware

import (
	"bitwise74/storage-api/internal/model"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewPremiumMiddleware only lets through users with an active premium
// subscription. Must run after the JWT middleware.
func NewPremiumMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")
		userID := c.MustGet("userID").(string)

		var user model.User

		err := db.
			WithContext(c.Request.Context()).
			Where("id = ?", userID).
			First(&user).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"exito":     false,
					"mensaje":   "Usuario no encontrado",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"exito":     false,
				"mensaje":   "Error al verificar estado premium",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check premium status", zap.String("requestID", requestID), zap.Error(err))
			return
		}

		if !user.Premium {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"exito":     false,
				"mensaje":   "Esta función requiere una suscripción premium",
				"requestID": requestID,
			})
			return
		}

		if !user.PremiumActive(time.Now().UTC()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"exito":     false,
				"mensaje":   "Tu suscripción premium ha expirado",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}
