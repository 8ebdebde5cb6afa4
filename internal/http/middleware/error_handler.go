package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/videomarket-backend/internal/interface/http/response"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error, если ответ ещё не отправлен.
// Внутренние ошибки маскируются, типизированные AppError отдаются со своим кодом.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		response.Error(c, c.Errors.Last().Err)
	}
}
