// Package auth authenticates gateway callers by JWT (x-access-token) or a
// shared internal key (x-internal-api-key), grounded on the teacher's
// internal/gateway/middleware/auth.go and
// internal/gateway/service/auth_service.go.
package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"judgecore/pkg/errors"
	"judgecore/pkg/utils/response"
)

// Claims is the JWT payload this platform expects: at minimum a user id.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Config carries the two shared secrets spec.md names.
type Config struct {
	JWTSecret      string
	InternalAPIKey string
}

// ContextUserIDKey is the gin context key the middleware stores the
// authenticated user id under.
const ContextUserIDKey = "auth_user_id"

// Middleware authenticates a request via x-access-token (HS256 JWT) or
// x-internal-api-key (shared secret), either of which is sufficient per
// spec.md 6.
func Middleware(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("x-internal-api-key"); key != "" {
			if key == cfg.InternalAPIKey {
				c.Next()
				return
			}
			response.AbortWithErrorCode(c, errors.Unauthorized, "invalid internal api key")
			return
		}

		token := c.GetHeader("x-access-token")
		if token == "" {
			response.AbortWithErrorCode(c, errors.Unauthorized, "missing credentials")
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New(errors.TokenInvalid)
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			response.AbortWithErrorCode(c, errors.TokenInvalid, "invalid token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID extracts the authenticated user id set by Middleware. Returns ""
// if the request was authenticated via the internal key (no user scope).
func UserID(c *gin.Context) string {
	v, _ := c.Get(ContextUserIDKey)
	s, _ := v.(string)
	return s
}
