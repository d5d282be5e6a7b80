package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeStorage      ErrorCode = "STORAGE_ERROR"
)

// AppError — ошибка сервисного слоя с кодом и HTTP статусом.
// Fields дополняет ответ ошибками конкретных полей формы.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Fields     map[string][]string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation создаёт ошибку валидации с перечнем проблемных полей.
func Validation(message string, fields map[string][]string) *AppError {
	e := New(ErrCodeValidation, message)
	e.Fields = fields
	return e
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// As достаёт AppError из цепочки ошибок.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeValidation
}

var (
	ErrImageNotFound          = New(ErrCodeNotFound, "Изображение не найдено")
	ErrRecordNotFound         = New(ErrCodeNotFound, "Запись не найдена")
	ErrServiceRequestNotFound = New(ErrCodeNotFound, "Заявка не найдена")
	ErrUnauthorized           = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden              = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials     = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrInvalidLogoPath        = New(ErrCodeForbidden, "Недопустимый путь")
)
