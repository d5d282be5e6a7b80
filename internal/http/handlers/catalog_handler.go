package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/mebel-backend/internal/dto"
	"github.com/ignatzorin/mebel-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mebel-backend/internal/http/middleware"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/repository"
)

// CatalogService — CRUD одной сущности каталога.
type CatalogService[T any, P models.EntityPtr[T]] interface {
	List(ctx context.Context, f repository.ListFilter) ([]T, error)
	Get(ctx context.Context, id string) (P, error)
	GetBySlug(ctx context.Context, slug string) (P, error)
	GetForUpdate(ctx context.Context, id string) (P, error)
	Create(ctx context.Context, entity P, actor string) (P, error)
	Update(ctx context.Context, id string, entity P, actor string) (P, error)
	Delete(ctx context.Context, id, actor string) error
	ToggleActive(ctx context.Context, id string) (bool, error)
}

// CatalogHandler — HTTP слой одной таблицы каталога.
type CatalogHandler[T any, P models.EntityPtr[T]] struct {
	svc CatalogService[T, P]
}

func NewCatalogHandler[T any, P models.EntityPtr[T]](svc CatalogService[T, P]) *CatalogHandler[T, P] {
	return &CatalogHandler[T, P]{svc: svc}
}

// Register вешает маршруты ресурса: чтение на public, запись на admin.
func (h *CatalogHandler[T, P]) Register(public, admin *gin.RouterGroup, resource string) {
	base := "/" + resource
	byID := base + "/:id"

	public.GET(base, h.List)
	public.GET(base+"/slug/:slug", h.GetBySlug)
	public.GET(byID, middleware.ULIDValidator("id"), h.Get)

	admin.POST(base, h.Create)
	admin.PUT(byID, middleware.ULIDValidator("id"), h.Update)
	admin.DELETE(byID, middleware.ULIDValidator("id"), h.Delete)
	admin.PATCH(byID+"/toggle-active", middleware.ULIDValidator("id"), h.ToggleActive)
}

// List GET /{resource}?active=&parent_id=&limit=&offset=
func (h *CatalogHandler[T, P]) List(c *gin.Context) {
	limit, offset := common.GetPagination(c, 0, 500)
	items, err := h.svc.List(c.Request.Context(), repository.ListFilter{
		Active:   common.ParseBoolQuery(c, "active"),
		ParentID: c.Query("parent_id"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CollectionResponse{Success: true, Data: items, Count: len(items)})
}

// Get GET /{resource}/:id
func (h *CatalogHandler[T, P]) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DataResponse{Success: true, Data: item})
}

// GetBySlug GET /{resource}/slug/:slug
func (h *CatalogHandler[T, P]) GetBySlug(c *gin.Context) {
	item, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DataResponse{Success: true, Data: item})
}

// Create POST /{resource}
func (h *CatalogHandler[T, P]) Create(c *gin.Context) {
	entity := P(new(T))
	entity.Record().IsActive = true
	if err := c.ShouldBindJSON(entity); err != nil {
		common.RespondBindError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), entity, common.CurrentActor(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.DataResponse{Success: true, Data: created})
}

// Update PUT /{resource}/:id — поля из тела накладываются на текущую запись.
func (h *CatalogHandler[T, P]) Update(c *gin.Context) {
	id := c.Param("id")
	current, err := h.svc.GetForUpdate(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	if err := c.ShouldBindJSON(current); err != nil {
		common.RespondBindError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, current, common.CurrentActor(c))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DataResponse{Success: true, Data: updated})
}

// Delete DELETE /{resource}/:id
func (h *CatalogHandler[T, P]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), common.CurrentActor(c)); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Запись удалена"})
}

// ToggleActive PATCH /{resource}/:id/toggle-active
func (h *CatalogHandler[T, P]) ToggleActive(c *gin.Context) {
	active, err := h.svc.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToggleActiveResponse{Success: true, IsActive: active})
}
