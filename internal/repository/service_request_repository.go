package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/repository/common"
)

// ServiceRequestFilter — фильтры списка заявок.
type ServiceRequestFilter struct {
	Status      string
	ServiceType string
	Limit       int
	Offset      int
}

// ServiceRequestRepository работает с таблицей service_requests.
type ServiceRequestRepository struct {
	db *sqlx.DB
}

func NewServiceRequestRepository(db *sqlx.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

// Create сохраняет заявку.
func (r *ServiceRequestRepository) Create(ctx context.Context, req *models.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (id, service_type, name, phone, message, status, ip_address, user_agent, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		req.ID, req.ServiceType, req.Name, req.Phone, req.Message, req.Status,
		req.IPAddress, req.UserAgent, req.SourceURL,
	).Scan(&req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("service request repository: create %w", err)
	}
	return nil
}

// GetByID возвращает заявку.
func (r *ServiceRequestRepository) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	req, err := common.GetByID[models.ServiceRequest](ctx, r.db, "service_requests", id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service request repository: get by id %w", err)
	}
	return req, nil
}

// List возвращает заявки, новые сверху, и общее количество по фильтру.
func (r *ServiceRequestRepository) List(ctx context.Context, f ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.ServiceType != "" {
		args = append(args, f.ServiceType)
		where = append(where, fmt.Sprintf("service_type = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM service_requests"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("service request repository: count %w", err)
	}

	query := "SELECT * FROM service_requests" + clause + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	items := []models.ServiceRequest{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("service request repository: list %w", err)
	}
	return items, total, nil
}

// UpdateStatus меняет статус и возвращает обновлённую заявку.
func (r *ServiceRequestRepository) UpdateStatus(ctx context.Context, id, status string) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := r.db.GetContext(ctx, &req,
		`UPDATE service_requests SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *`, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service request repository: update status %w", err)
	}
	return &req, nil
}
