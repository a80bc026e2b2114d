package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmarket/logger"
	"bookmarket/models"
	"bookmarket/services"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// ConfigErrorMessage is shown instead of the real cause when the signing
// secret is missing.
const ConfigErrorMessage = "Server configuration error. Please try again later."

// TokenParser verifies a raw token. services.AuthService implements it.
type TokenParser interface {
	ParseToken(raw string) (*services.Claims, error)
}

// AuthMiddleware accepts a Bearer header or a "token" cookie. When roles are
// given the token's role must be one of them.
func AuthMiddleware(parser TokenParser, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}

		claims, err := parser.ParseToken(raw)
		if errors.Is(err, services.ErrMisconfigured) {
			logger.FromCtx(c.Request.Context()).Error("token check without secret", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ConfigErrorMessage})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if len(roles) > 0 && !hasRole(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return strings.TrimSpace(h)
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func hasRole(allowed []models.Role, role models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentUserID returns the subject of the verified token.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func CurrentRole(c *gin.Context) models.Role {
	role, _ := c.Get(RoleKey)
	r, _ := role.(models.Role)
	return r
}
