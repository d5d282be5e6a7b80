package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/mebel-backend/internal/dto"
	"github.com/ignatzorin/mebel-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/service"
	"github.com/ignatzorin/mebel-backend/internal/storage"
)

// ImageService — операции над изображениями, нужные хэндлеру.
type ImageService interface {
	Upload(ctx context.Context, parentType, parentID string, files []service.UploadFile) (*service.UploadResult, error)
	List(ctx context.Context, parentType, parentID string) ([]models.Image, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, items []service.ReorderItem) error
	ToggleActive(ctx context.Context, id string) (bool, error)
}

// ImageHandler управляет изображениями сущностей каталога.
type ImageHandler struct {
	images ImageService
}

// NewImageHandler создаёт новый хэндлер.
func NewImageHandler(images ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// Upload обрабатывает POST /images/upload.
func (h *ImageHandler) Upload(c *gin.Context) {
	fields := map[string][]string{}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["files[]"]
		if len(files) == 0 {
			files = form.File["files"]
		}
	}
	switch {
	case len(files) == 0:
		fields["files"] = []string{"обязательное поле"}
	case len(files) > models.MaxImagesPerParent:
		fields["files"] = []string{fmt.Sprintf("не более %d файлов", models.MaxImagesPerParent)}
	}

	parentType := strings.TrimSpace(c.PostForm("parentable_type"))
	parentID := strings.TrimSpace(c.PostForm("parentable_id"))
	switch {
	case parentType == "":
		fields["parentable_type"] = []string{"обязательное поле"}
	case !storage.ValidParentType(parentType):
		fields["parentable_type"] = []string{"недопустимое значение"}
	}
	switch {
	case parentID == "":
		fields["parentable_id"] = []string{"обязательное поле"}
	case !storage.ValidParentID(parentID):
		fields["parentable_id"] = []string{"недопустимое значение"}
	}
	if len(fields) > 0 {
		common.RespondValidation(c, fields)
		return
	}

	uploads := make([]service.UploadFile, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, toUploadFile(fh))
	}

	res, err := h.images.Upload(c.Request.Context(), parentType, parentID, uploads)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	status := http.StatusOK
	if !res.Success() {
		status = http.StatusInternalServerError
	}
	c.JSON(status, dto.UploadImagesResponse{
		Success:        res.Success(),
		Message:        res.Message(),
		Images:         res.Images,
		Errors:         res.Errors,
		RemainingSlots: res.RemainingSlots,
	})
}

// Index обрабатывает GET /images?parentable_type=&parentable_id=.
func (h *ImageHandler) Index(c *gin.Context) {
	parentType := strings.TrimSpace(c.Query("parentable_type"))
	parentID := strings.TrimSpace(c.Query("parentable_id"))

	fields := map[string][]string{}
	if parentType == "" {
		fields["parentable_type"] = []string{"обязательное поле"}
	}
	if parentID == "" {
		fields["parentable_id"] = []string{"обязательное поле"}
	}
	if len(fields) > 0 {
		common.RespondValidation(c, fields)
		return
	}

	images, err := h.images.List(c.Request.Context(), parentType, parentID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImageListResponse{
		Success: true,
		Images:  images,
		Count:   len(images),
		Max:     models.MaxImagesPerParent,
	})
}

// Destroy обрабатывает DELETE /images/:id.
func (h *ImageHandler) Destroy(c *gin.Context) {
	if err := h.images.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Изображение удалено"})
}

// Reorder обрабатывает POST /images/reorder.
func (h *ImageHandler) Reorder(c *gin.Context) {
	var req dto.ReorderImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBindError(c, err)
		return
	}

	items := make([]service.ReorderItem, 0, len(req.Images))
	for _, img := range req.Images {
		items = append(items, service.ReorderItem{ID: img.ID, SortOrder: *img.SortOrder})
	}

	if err := h.images.Reorder(c.Request.Context(), items); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Порядок изображений обновлён"})
}

// ToggleActive обрабатывает PATCH /images/:id/toggle-active.
func (h *ImageHandler) ToggleActive(c *gin.Context) {
	active, err := h.images.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToggleActiveResponse{Success: true, IsActive: active})
}
