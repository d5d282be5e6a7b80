package dto

import (
	"github.com/ignatzorin/mebel-backend/internal/models"
)

// ErrorResponse — стандартный ответ с ошибкой.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// MessageResponse — успешный ответ без данных.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataResponse — успешный ответ с одной сущностью.
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ListResponse — страница записей.
type ListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

type ToggleActiveResponse struct {
	Success  bool `json:"success"`
	IsActive bool `json:"is_active"`
}

// UploadImagesResponse — итог пакетной загрузки изображений.
type UploadImagesResponse struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Images         []models.Image `json:"images"`
	Errors         []string       `json:"errors"`
	RemainingSlots int            `json:"remaining_slots"`
}

type ImageListResponse struct {
	Success bool           `json:"success"`
	Images  []models.Image `json:"images"`
	Count   int            `json:"count"`
	Max     int            `json:"max"`
}

type LogoUploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// ServiceRequestResponse дополняет заявку названием услуги.
type ServiceRequestResponse struct {
	models.ServiceRequest
	ServiceTypeLabel string `json:"service_type_label"`
}

func NewServiceRequestResponse(r *models.ServiceRequest) ServiceRequestResponse {
	return ServiceRequestResponse{ServiceRequest: *r, ServiceTypeLabel: r.ServiceTypeLabel()}
}

// TokenResponse — выданный access токен.
type TokenResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// CollectionResponse — полный список без пагинации по счётчику.
type CollectionResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
}
