package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dayplan/itinerary-backend-go/pkg/response"
)

// UserIDKey is the context key carrying the authenticated user's id
const UserIDKey = "user_id"

// OptionalAuth attaches the owning-user id from a bearer token when one is
// presented. Requests without a token proceed anonymously; a token that is
// present but invalid is rejected. Issuing tokens is not this service's job.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == header {
			response.Error(c, http.StatusUnauthorized, "Malformed authorization header")
			c.Abort()
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Error(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
			c.Set(UserIDKey, sub)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user id, or "" for anonymous
func CurrentUser(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
