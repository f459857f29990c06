package res

import (
	"errors"
	"net/http"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Response единый формат JSON-ответа
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON отправляет ответ в общем формате
func JSON(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success: status < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

// OK отправляет 200 с данными
func OK(c *gin.Context, message string, data any) {
	JSON(c, http.StatusOK, message, data)
}

// Created отправляет 201 с данными
func Created(c *gin.Context, message string, data any) {
	JSON(c, http.StatusCreated, message, data)
}

// StatusOf возвращает HTTP-статус для вида ошибки
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// MessageOf возвращает сообщение для клиента. Причина внутренних ошибок не раскрывается.
func MessageOf(err error) string {
	var appErr *domain.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Internal server error"
}

// Error отправляет ответ об ошибке и прерывает цепочку обработчиков
func Error(c *gin.Context, err error, log *logger.Logger) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Errorw("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Message: MessageOf(err),
	})
}
