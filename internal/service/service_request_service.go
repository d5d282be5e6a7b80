package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/mebel-backend/internal/goroutine"
	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mebel-backend/internal/repository"
	"github.com/ignatzorin/mebel-backend/internal/validation"
)

const (
	defaultRequestsPageSize = 20
	maxRequestsPageSize     = 100
	exportLimit             = 10000
	notifyTimeout           = 30 * time.Second
)

// ServiceRequestRepository описывает зависимости ServiceRequestService от слоя хранилища.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	List(ctx context.Context, f repository.ServiceRequestFilter) ([]models.ServiceRequest, int, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.ServiceRequest, error)
}

// CreateServiceRequestInput — данные формы и метаданные запроса.
type CreateServiceRequestInput struct {
	ServiceType string
	Name        string
	Phone       string
	Message     *string
	SourceURL   *string
	IPAddress   string
	UserAgent   string
}

// ServiceRequestService принимает заявки с сайта и даёт менеджерам их обрабатывать.
type ServiceRequestService struct {
	repo     ServiceRequestRepository
	notifier Notifier
}

// NewServiceRequestService создаёт сервис. notifier может быть nil, тогда письма не отправляются.
func NewServiceRequestService(repo ServiceRequestRepository, notifier Notifier) *ServiceRequestService {
	return &ServiceRequestService{repo: repo, notifier: notifier}
}

// Create проверяет и сохраняет заявку, затем в фоне уведомляет менеджера.
func (s *ServiceRequestService) Create(ctx context.Context, in CreateServiceRequestInput) (*models.ServiceRequest, error) {
	errs := validation.Errors{}
	errs.Add("service_type", validation.ValidateServiceType(in.ServiceType))
	errs.Add("name", validation.ValidateName(in.Name))
	errs.Add("phone", validation.ValidatePhone(in.Phone))
	errs.Add("message", validation.ValidateMessageContent(in.Message))
	if len(errs) > 0 {
		return nil, apperror.Validation("Ошибка валидации", errs)
	}

	req := &models.ServiceRequest{
		ID:          models.NewID(),
		ServiceType: in.ServiceType,
		Name:        strings.TrimSpace(in.Name),
		Phone:       strings.TrimSpace(in.Phone),
		Message:     trimmedOrNil(in.Message),
		Status:      models.ServiceRequestStatusNew,
		IPAddress:   trimmedOrNil(&in.IPAddress),
		UserAgent:   trimmedOrNil(&in.UserAgent),
	}
	if validation.ValidateExternalLink(in.SourceURL) == nil {
		req.SourceURL = trimmedOrNil(in.SourceURL)
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить заявку")
	}
	serviceRequestsTotal.WithLabelValues(req.ServiceType).Inc()

	logger.Log.WithFields(logrus.Fields{
		"request_id":   req.ID,
		"service_type": req.ServiceType,
	}).Info("service requests: новая заявка")

	s.notify(req)
	return req, nil
}

func (s *ServiceRequestService) notify(req *models.ServiceRequest) {
	if s.notifier == nil {
		return
	}
	snapshot := *req
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyServiceRequest(ctx, &snapshot); err != nil {
			logger.Log.WithError(err).WithField("request_id", snapshot.ID).Warn("service requests: уведомление не отправлено")
		}
	})
}

// List возвращает страницу заявок и общее количество.
func (s *ServiceRequestService) List(ctx context.Context, f repository.ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	if err := s.validateFilter(f); err != nil {
		return nil, 0, err
	}
	if f.Limit <= 0 {
		f.Limit = defaultRequestsPageSize
	}
	if f.Limit > maxRequestsPageSize {
		f.Limit = maxRequestsPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заявки")
	}
	return items, total, nil
}

// Get возвращает заявку по id.
func (s *ServiceRequestService) Get(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapServiceRequestError(err)
	}
	return req, nil
}

// UpdateStatus меняет статус заявки.
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, id, status string) (*models.ServiceRequest, error) {
	if err := validation.ValidateServiceRequestStatus(status); err != nil {
		return nil, apperror.Validation("Ошибка валидации", map[string][]string{"status": {err.Error()}})
	}
	req, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, mapServiceRequestError(err)
	}
	logger.Log.WithFields(logrus.Fields{"request_id": id, "status": status}).Info("service requests: статус изменён")
	return req, nil
}

// Export пишет заявки по фильтру в XLSX.
func (s *ServiceRequestService) Export(ctx context.Context, f repository.ServiceRequestFilter, w io.Writer) error {
	if err := s.validateFilter(f); err != nil {
		return err
	}
	f.Limit, f.Offset = exportLimit, 0

	items, _, err := s.repo.List(ctx, f)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить заявки")
	}
	if err := writeServiceRequestsXLSX(w, items); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сформировать файл")
	}
	return nil
}

func (s *ServiceRequestService) validateFilter(f repository.ServiceRequestFilter) error {
	errs := validation.Errors{}
	if f.Status != "" {
		errs.Add("status", validation.ValidateServiceRequestStatus(f.Status))
	}
	if f.ServiceType != "" {
		errs.Add("service_type", validation.ValidateServiceType(f.ServiceType))
	}
	if len(errs) > 0 {
		return apperror.Validation("Ошибка валидации", errs)
	}
	return nil
}

func mapServiceRequestError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ErrServiceRequestNotFound
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка хранилища заявок")
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
