package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/repository/common"
)

var (
	ErrNotFound      = common.ErrNotFound
	ErrAlreadyExists = common.ErrAlreadyExists
	// ErrImageLimitReached возвращается, если у родителя уже максимум живых изображений.
	ErrImageLimitReached = common.ErrLimitReached
)

// ImageRepository работает с таблицей images.
type ImageRepository struct {
	db *sqlx.DB
}

// NewImageRepository создаёт экземпляр.
func NewImageRepository(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// CountByParent считает живые изображения сущности.
func (r *ImageRepository) CountByParent(ctx context.Context, parentType, parentID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM images WHERE parentable_type = $1 AND parentable_id = $2 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &count, query, parentType, parentID); err != nil {
		return 0, fmt.Errorf("image repository: count %w", err)
	}
	return count, nil
}

// ListByParent возвращает живые изображения сущности по порядку сортировки.
func (r *ImageRepository) ListByParent(ctx context.Context, parentType, parentID string) ([]models.Image, error) {
	images := []models.Image{}
	query := `
		SELECT * FROM images
		WHERE parentable_type = $1 AND parentable_id = $2 AND deleted_at IS NULL
		ORDER BY sort_order, created_at
	`
	if err := r.db.SelectContext(ctx, &images, query, parentType, parentID); err != nil {
		return nil, fmt.Errorf("image repository: list %w", err)
	}
	return images, nil
}

// GetByID возвращает живое изображение.
func (r *ImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	image, err := common.GetLiveByField[models.Image](ctx, r.db, "images", "id", id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("image repository: get by id %w", err)
	}
	return image, nil
}

// CreateWithinLimit вставляет запись под транзакционной advisory-блокировкой родителя.
// Под блокировкой заново считаются живые изображения и вычисляется sort_order = max + 1,
// поэтому параллельные загрузки не превышают limit и не получают одинаковый порядок.
func (r *ImageRepository) CreateWithinLimit(ctx context.Context, image *models.Image, limit int) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`,
			image.ParentableType, image.ParentableID,
		); err != nil {
			return fmt.Errorf("image repository: lock parent %w", err)
		}

		var stats struct {
			Count   int `db:"count"`
			MaxSort int `db:"max_sort"`
		}
		if err := tx.GetContext(ctx, &stats, `
			SELECT COUNT(*) AS count, COALESCE(MAX(sort_order), 0) AS max_sort
			FROM images
			WHERE parentable_type = $1 AND parentable_id = $2 AND deleted_at IS NULL
		`, image.ParentableType, image.ParentableID); err != nil {
			return fmt.Errorf("image repository: parent stats %w", err)
		}
		if stats.Count >= limit {
			return ErrImageLimitReached
		}
		image.SortOrder = stats.MaxSort + 1

		query := `
			INSERT INTO images (
				id, key, is_active, hash, filename, original_name, mime_type, size, path,
				parentable_type, parentable_id, sort_order
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			image.ID, image.Key, image.IsActive, image.Hash, image.Filename, image.OriginalName,
			image.MimeType, image.Size, image.Path, image.ParentableType, image.ParentableID, image.SortOrder,
		).Scan(&image.CreatedAt, &image.UpdatedAt); err != nil {
			return fmt.Errorf("image repository: create %w", err)
		}
		return nil
	})
}

// ExistingIDs возвращает подмножество ids, которым соответствуют живые изображения.
func (r *ImageRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM images WHERE id IN (?) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, fmt.Errorf("image repository: existing ids %w", err)
	}

	var rows []string
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("image repository: existing ids %w", err)
	}
	for _, id := range rows {
		found[id] = struct{}{}
	}
	return found, nil
}

// UpdateSortOrder меняет порядок одного изображения.
func (r *ImageRepository) UpdateSortOrder(ctx context.Context, id string, sortOrder int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE images SET sort_order = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`,
		sortOrder, id,
	)
	if err != nil {
		return fmt.Errorf("image repository: update sort order %w", err)
	}
	return expectAffected(res)
}

// SoftDelete помечает изображение удалённым.
func (r *ImageRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE images SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("image repository: soft delete %w", err)
	}
	return expectAffected(res)
}

// ToggleActive инвертирует is_active и возвращает новое значение.
func (r *ImageRepository) ToggleActive(ctx context.Context, id string) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active,
		`UPDATE images SET is_active = NOT is_active, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL RETURNING is_active`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("image repository: toggle active %w", err)
	}
	return active, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
