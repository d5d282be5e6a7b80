package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mebel-backend/internal/repository"
	"github.com/ignatzorin/mebel-backend/internal/service"
)

type mockServiceRequestService struct {
	mock.Mock
}

func (m *mockServiceRequestService) Create(ctx context.Context, in service.CreateServiceRequestInput) (*models.ServiceRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockServiceRequestService) List(ctx context.Context, f repository.ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.ServiceRequest), args.Int(1), args.Error(2)
}

func (m *mockServiceRequestService) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockServiceRequestService) UpdateStatus(ctx context.Context, id, status string) (*models.ServiceRequest, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRequest), args.Error(1)
}

func (m *mockServiceRequestService) Export(ctx context.Context, f repository.ServiceRequestFilter, w io.Writer) error {
	args := m.Called(ctx, f, w)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, "PK-xlsx")
	}
	return args.Error(0)
}

func newServiceRequestRouter(svc *mockServiceRequestService) *gin.Engine {
	r := gin.New()
	h := NewServiceRequestHandler(svc)
	r.POST("/service-requests", h.Create)
	r.GET("/service-requests", h.List)
	r.GET("/service-requests/export", h.Export)
	r.GET("/service-requests/:id", h.Get)
	r.PATCH("/service-requests/:id/status", h.UpdateStatus)
	return r
}

func TestServiceRequestHandler_Create(t *testing.T) {
	svc := new(mockServiceRequestService)
	r := newServiceRequestRouter(svc)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateServiceRequestInput) bool {
		return in.ServiceType == models.ServiceTypeAssembly &&
			in.SourceURL != nil && *in.SourceURL == "https://mebel.example/services" &&
			in.UserAgent == "test-agent" && in.IPAddress != ""
	})).Return(&models.ServiceRequest{ID: "r1", ServiceType: models.ServiceTypeAssembly, Status: "new"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/service-requests",
		strings.NewReader(`{"service_type":"assembly","name":"Олег","phone":"89990000000"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://mebel.example/services")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Сборка мебели", data["service_type_label"])
	assert.Equal(t, "r1", data["id"])
	svc.AssertExpectations(t)
}

func TestServiceRequestHandler_Create_Validation(t *testing.T) {
	svc := new(mockServiceRequestService)
	r := newServiceRequestRouter(svc)
	svc.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperror.Validation("Ошибка валидации", map[string][]string{"phone": {"телефон обязателен"}}))

	w := doJSON(r, http.MethodPost, "/service-requests", map[string]string{"service_type": "assembly"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "phone")

	w = doJSON(r, http.MethodPost, "/service-requests", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestServiceRequestHandler_List(t *testing.T) {
	svc := new(mockServiceRequestService)
	r := newServiceRequestRouter(svc)
	svc.On("List", mock.Anything, repository.ServiceRequestFilter{Status: "new", Limit: 100, Offset: 5}).
		Return([]models.ServiceRequest{{ID: "r1"}}, 42, nil).Once()

	w := doJSON(r, http.MethodGet, "/service-requests?status=new&limit=1000&offset=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(42), body["total"])
	assert.Equal(t, float64(100), body["limit"])
}

func TestServiceRequestHandler_UpdateStatus(t *testing.T) {
	svc := new(mockServiceRequestService)
	r := newServiceRequestRouter(svc)
	svc.On("UpdateStatus", mock.Anything, "r1", "processed").
		Return(&models.ServiceRequest{ID: "r1", Status: "processed"}, nil).Once()
	svc.On("UpdateStatus", mock.Anything, "r2", "processed").Return(nil, apperror.ErrServiceRequestNotFound).Once()

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPatch, "/service-requests/r1/status", map[string]string{"status": "processed"}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPatch, "/service-requests/r2/status", map[string]string{"status": "processed"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, doJSON(r, http.MethodPatch, "/service-requests/r1/status", map[string]string{}).Code)
}

func TestServiceRequestHandler_Export(t *testing.T) {
	svc := new(mockServiceRequestService)
	r := newServiceRequestRouter(svc)
	svc.On("Export", mock.Anything, repository.ServiceRequestFilter{ServiceType: "assembly"}, mock.Anything).Return(nil).Once()

	w := doJSON(r, http.MethodGet, "/service-requests/export?service_type=assembly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "service-requests-"+time.Now().Format("20060102"))
	assert.Equal(t, "PK-xlsx", w.Body.String())
}
