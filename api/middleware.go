package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fintrack/backend/models"
)

const userIDKey = "userID"

// signToken issues an HS256 token carrying the user id.
func (h *Handler) signToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
	})
	return token.SignedString([]byte(h.jwtSecret))
}

// parseToken validates the signature and returns the embedded user id.
func (h *Handler) parseToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	return int(userID), nil
}

// AuthMiddleware resolves the requesting user from the Authorization
// header. Both "Bearer <token>" and "Token <token>" schemes are accepted;
// the web client has used either over time.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "authorization header required"})
			return
		}

		userID, err := h.parseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int {
	return c.GetInt(userIDKey)
}
