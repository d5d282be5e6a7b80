package dto

// LoginRequest — вход администратора.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ReorderImagesRequest — новые позиции изображений.
type ReorderImagesRequest struct {
	Images []ReorderImageItem `json:"images" binding:"required,min=1,dive"`
}

type ReorderImageItem struct {
	ID        string `json:"id" binding:"required"`
	SortOrder *int   `json:"sort_order" binding:"required"`
}

// DeleteLogoRequest — удаление логотипа по ключу в хранилище.
type DeleteLogoRequest struct {
	Path string `json:"path" binding:"required"`
}

// CreateServiceRequestRequest — форма заявки с сайта. Поля проверяет сервис.
type CreateServiceRequestRequest struct {
	ServiceType string  `json:"service_type"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Message     *string `json:"message"`
	SourceURL   *string `json:"source_url"`
}

type UpdateServiceRequestStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
