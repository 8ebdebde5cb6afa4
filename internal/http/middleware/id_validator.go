package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/videomarket-backend/internal/interface/http/response"
	"github.com/ignatzorin/videomarket-backend/internal/validation"
)

// IDValidator проверяет, что параметр с указанным именем является положительным числом.
// Использование: router.PUT("/categories/:id", IDValidator("id"), handler.Rename)
func IDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := validation.ParseID(c.Param(paramName)); err != nil {
			response.BadRequest(c, "параметр "+paramName+": "+err.Error())
			return
		}
		c.Next()
	}
}
