package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"engitech-contact-backend/internal/delivery/http/response"
	"engitech-contact-backend/internal/domain"
	"engitech-contact-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

// AdminAuth guards operator routes with a bearer token whose role claim is "admin".
// HS256 tokens are checked against secret; RS256 tokens against keys, when set.
func AdminAuth(secret string, keys *auth.KeySet) gin.HandlerFunc {
	hmacKey := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || tokenString == authHeader {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				if secret == "" {
					return nil, fmt.Errorf("HS256 token received but ADMIN_JWT_SECRET is not configured")
				}
				return hmacKey, nil
			}

			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok && keys != nil {
				return keys.KeyFunc(token)
			}

			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodRS256.Alg()}))
		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		if role, _ := claims["role"].(string); role != adminRole {
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		c.Set(string(domain.KeyAdminSubject), sub)

		c.Next()
	}
}
