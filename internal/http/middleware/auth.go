package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context ключи для gin.Context.
const (
	ContextSubjectKey = "subject"
	ContextRoleKey    = "role"
)

// TokenParser проверяет access токен и возвращает субъекта и роль.
type TokenParser interface {
	ParseAccess(token string) (string, string, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "требуется авторизация"})
			return
		}

		subject, role, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "токен невалиден"})
			return
		}

		c.Set(ContextSubjectKey, subject)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// RequireRole пропускает только запросы с указанной ролью. Ставится после AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRoleKey) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "доступ запрещён"})
			return
		}
		c.Next()
	}
}
