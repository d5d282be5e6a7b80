package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/mebel-backend/internal/dto"
	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
)

const internalErrorMessage = "Внутренняя ошибка сервера"

// ErrorHandler превращает ошибки, добавленные через c.Error, в ответ {success:false, message}.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		status, body := ErrorResponse(c, c.Errors.Last().Err)
		c.JSON(status, body)
	}
}

// AbortWithError пишет ответ для err и прерывает цепочку.
func AbortWithError(c *gin.Context, err error) {
	status, body := ErrorResponse(c, err)
	c.AbortWithStatusJSON(status, body)
}

// ErrorResponse определяет статус и тело ответа. Сообщения внутренних ошибок клиенту не показываются.
func ErrorResponse(c *gin.Context, err error) (int, dto.ErrorResponse) {
	fields := logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}

	appErr, ok := apperror.As(err)
	if !ok {
		logger.Log.WithFields(fields).WithError(err).Error("Request error")
		return http.StatusInternalServerError, dto.ErrorResponse{Message: internalErrorMessage}
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Log.WithFields(fields).WithError(err).Error("Request error")
		if appErr.Code == apperror.ErrCodeInternal {
			return appErr.HTTPStatus, dto.ErrorResponse{Message: internalErrorMessage}
		}
	}

	return appErr.HTTPStatus, dto.ErrorResponse{Message: appErr.Message, Errors: appErr.Fields}
}
