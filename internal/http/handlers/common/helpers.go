package common

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/mebel-backend/internal/http/middleware"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
)

const validationMessage = "Ошибка валидации"

// CurrentActor возвращает субъекта токена или пустую строку для анонимных запросов.
func CurrentActor(c *gin.Context) string {
	return c.GetString(middleware.ContextSubjectKey)
}

// RespondError пишет ответ для ошибки сервисного слоя.
func RespondError(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// RespondValidation отвечает 422 с ошибками полей.
func RespondValidation(c *gin.Context, fields map[string][]string) {
	RespondError(c, apperror.Validation(validationMessage, fields))
}

// RespondBindError переводит ошибку биндинга gin в ответ 422 (или 400 для битого JSON).
func RespondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		RespondValidation(c, ValidationFields(verrs))
		return
	}
	if errors.Is(err, io.EOF) {
		RespondError(c, apperror.New(apperror.ErrCodeValidation, "Пустое тело запроса"))
		return
	}
	RespondError(c, apperror.New(apperror.ErrCodeBadRequest, "Некорректный JSON"))
}

// ValidationFields группирует ошибки validator по json имени поля.
func ValidationFields(verrs validator.ValidationErrors) map[string][]string {
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		key := fieldKey(fe)
		fields[key] = append(fields[key], fieldMessage(fe))
	}
	return fields
}

// fieldKey убирает имя корневой структуры и встроенных структур:
// ReorderImagesRequest.images[0].id → images.0.id, Rubric.Base.sort_order → sort_order.
func fieldKey(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	kept := parts[:0]
	for _, p := range parts[1:] {
		if r, _ := utf8.DecodeRuneInString(p); unicode.IsUpper(r) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return fe.Field()
	}
	return strings.NewReplacer("[", ".", "]", "").Replace(strings.Join(kept, "."))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "max":
		return fmt.Sprintf("не более %s символов", fe.Param())
	case "min":
		return fmt.Sprintf("не менее %s", fe.Param())
	case "gte":
		return fmt.Sprintf("значение должно быть не меньше %s", fe.Param())
	case "email":
		return "некорректный email"
	case "url":
		return "некорректный URL"
	}
	return "некорректное значение"
}

// UseJSONFieldNames заставляет validator называть поля по json тегам.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// RespondSuccess отвечает 200 с телом.
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// ParseIntQuery читает целочисленный query параметр, при ошибке возвращает fallback.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// ParseBoolQuery читает 1/0/true/false; отсутствующий или нераспознанный параметр даёт nil.
func ParseBoolQuery(c *gin.Context, key string) *bool {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &parsed
}

// GetPagination читает limit и offset, ограничивая limit значением maxLimit.
func GetPagination(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = ParseIntQuery(c, "limit", defaultLimit)
	offset = ParseIntQuery(c, "offset", 0)
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if limit < 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return
}
