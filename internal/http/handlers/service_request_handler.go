package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/mebel-backend/internal/dto"
	"github.com/ignatzorin/mebel-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/repository"
	"github.com/ignatzorin/mebel-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ServiceRequestService interface {
	Create(ctx context.Context, in service.CreateServiceRequestInput) (*models.ServiceRequest, error)
	List(ctx context.Context, f repository.ServiceRequestFilter) ([]models.ServiceRequest, int, error)
	Get(ctx context.Context, id string) (*models.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.ServiceRequest, error)
	Export(ctx context.Context, f repository.ServiceRequestFilter, w io.Writer) error
}

// ServiceRequestHandler принимает заявки с сайта и отдаёт их менеджерам.
type ServiceRequestHandler struct {
	requests ServiceRequestService
}

func NewServiceRequestHandler(requests ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{requests: requests}
}

// Create обрабатывает POST /service-requests.
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	var req dto.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBindError(c, err)
		return
	}

	sourceURL := req.SourceURL
	if sourceURL == nil || *sourceURL == "" {
		if ref := c.GetHeader("Referer"); ref != "" {
			sourceURL = &ref
		}
	}

	created, err := h.requests.Create(c.Request.Context(), service.CreateServiceRequestInput{
		ServiceType: req.ServiceType,
		Name:        req.Name,
		Phone:       req.Phone,
		Message:     req.Message,
		SourceURL:   sourceURL,
		IPAddress:   c.ClientIP(),
		UserAgent:   c.Request.UserAgent(),
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.DataResponse{Success: true, Data: dto.NewServiceRequestResponse(created)})
}

// List обрабатывает GET /service-requests.
func (h *ServiceRequestHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c, 20, 100)
	f := repository.ServiceRequestFilter{
		Status:      c.Query("status"),
		ServiceType: c.Query("service_type"),
		Limit:       limit,
		Offset:      offset,
	}

	items, total, err := h.requests.List(c.Request.Context(), f)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	data := make([]dto.ServiceRequestResponse, 0, len(items))
	for i := range items {
		data = append(data, dto.NewServiceRequestResponse(&items[i]))
	}
	c.JSON(http.StatusOK, dto.ListResponse{Success: true, Data: data, Total: total, Limit: limit, Offset: offset})
}

// Get обрабатывает GET /service-requests/:id.
func (h *ServiceRequestHandler) Get(c *gin.Context) {
	req, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DataResponse{Success: true, Data: dto.NewServiceRequestResponse(req)})
}

// UpdateStatus обрабатывает PATCH /service-requests/:id/status.
func (h *ServiceRequestHandler) UpdateStatus(c *gin.Context) {
	var body dto.UpdateServiceRequestStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondBindError(c, err)
		return
	}

	req, err := h.requests.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DataResponse{Success: true, Data: dto.NewServiceRequestResponse(req)})
}

// Export обрабатывает GET /service-requests/export.
func (h *ServiceRequestHandler) Export(c *gin.Context) {
	f := repository.ServiceRequestFilter{
		Status:      c.Query("status"),
		ServiceType: c.Query("service_type"),
	}

	var buf bytes.Buffer
	if err := h.requests.Export(c.Request.Context(), f, &buf); err != nil {
		common.RespondError(c, err)
		return
	}

	filename := fmt.Sprintf("service-requests-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
