package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// NewJWTMiddleware verifies the HS256 token issued by the identity service
// and stores its subject as userID. The token is read from the Authorization
// header, falling back to the auth_token cookie.
func NewJWTMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"exito":     false,
				"mensaje":   "Acceso denegado. Token requerido",
				"requestID": requestID,
			})
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}

			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"exito":     false,
				"mensaje":   "Token inválido o expirado",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected token", zap.String("requestID", requestID), zap.Error(err))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"exito":     false,
				"mensaje":   "Token inválido o expirado",
				"requestID": requestID,
			})
			return
		}

		userID, err := subject(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"exito":     false,
				"mensaje":   "Token inválido o expirado",
				"requestID": requestID,
			})

			zap.L().Debug("Token has no usable user id", zap.String("requestID", requestID), zap.Error(err))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}

		return ""
	}

	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}

	return ""
}

// subject reads the user id from the id claim, or user_id for older tokens.
// Numeric ids are accepted too.
func subject(claims jwt.MapClaims) (string, error) {
	for _, name := range []string{"id", "user_id"} {
		switch v := claims[name].(type) {
		case string:
			if v != "" {
				return v, nil
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	}

	return "", errors.New("token carries no user id")
}
