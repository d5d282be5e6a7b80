package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/mebel-backend/internal/models"
)

// ULIDValidator проверяет, что параметр с указанным именем является валидным ULID.
// Использование: router.GET("/images/:id", ULIDValidator("id"), handler.Destroy)
func ULIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param(paramName)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "параметр " + paramName + " обязателен",
			})
			return
		}
		if !models.IsULID(id) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Запись не найдена",
			})
			return
		}
		c.Next()
	}
}
