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

var baseColumns = []string{"id", "slug", "is_active", "sort_order"}

// TableSpec описывает таблицу сущности каталога.
type TableSpec struct {
	Name string
	// Label — колонка отображаемого значения, вторичный ключ сортировки.
	Label string
	// Parent — колонка ссылки на родителя для фильтра parent_id.
	Parent string
	// Columns — собственные колонки сущности без общих и аудита.
	Columns []string
	Audited bool
}

// ListFilter — параметры выборки списка.
type ListFilter struct {
	Active   *bool
	ParentID string
	Limit    int
	Offset   int
}

// CatalogRepository — generic доступ к таблицам каталога с мягким удалением.
type CatalogRepository[T any] struct {
	db   *sqlx.DB
	spec TableSpec
}

// NewCatalogRepository создаёт репозиторий таблицы.
func NewCatalogRepository[T any](db *sqlx.DB, spec TableSpec) *CatalogRepository[T] {
	return &CatalogRepository[T]{db: db, spec: spec}
}

// Insert сохраняет новую запись и заполняет created_at/updated_at.
func (r *CatalogRepository[T]) Insert(ctx context.Context, entity models.Entity) error {
	columns := append(append([]string{}, baseColumns...), r.spec.Columns...)
	if r.spec.Audited {
		columns = append(columns, "created_by", "updated_by")
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (:%s) RETURNING created_at, updated_at",
		r.spec.Name, strings.Join(columns, ", "), strings.Join(columns, ", :"),
	)

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, entity)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("%s repository: insert %w", r.spec.Name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%s repository: insert %w", r.spec.Name, err)
		}
		return fmt.Errorf("%s repository: insert returned no rows", r.spec.Name)
	}
	rec := entity.Record()
	if err := rows.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return fmt.Errorf("%s repository: insert scan %w", r.spec.Name, err)
	}
	return nil
}

// Update перезаписывает изменяемые колонки живой записи.
func (r *CatalogRepository[T]) Update(ctx context.Context, entity models.Entity) error {
	columns := append([]string{"slug", "is_active", "sort_order"}, r.spec.Columns...)
	if r.spec.Audited {
		columns = append(columns, "updated_by")
	}
	sets := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		sets = append(sets, c+" = :"+c)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = :id AND deleted_at IS NULL RETURNING updated_at",
		r.spec.Name, strings.Join(sets, ", "),
	)

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, entity)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("%s repository: update %w", r.spec.Name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%s repository: update %w", r.spec.Name, err)
		}
		return ErrNotFound
	}
	return rows.Scan(&entity.Record().UpdatedAt)
}

// Get возвращает живую запись по id.
func (r *CatalogRepository[T]) Get(ctx context.Context, id string) (*T, error) {
	return common.GetLiveByField[T](ctx, r.db, r.spec.Name, "id", id)
}

// GetBySlug возвращает живую запись по slug.
func (r *CatalogRepository[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	return common.GetLiveByField[T](ctx, r.db, r.spec.Name, "slug", slug)
}

// List возвращает живые записи по sort_order, затем по значению.
func (r *CatalogRepository[T]) List(ctx context.Context, f ListFilter) ([]T, error) {
	var (
		where = []string{"deleted_at IS NULL"}
		args  []interface{}
	)
	if f.Active != nil {
		args = append(args, *f.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.ParentID != "" && r.spec.Parent != "" {
		args = append(args, f.ParentID)
		where = append(where, fmt.Sprintf("%s = $%d", r.spec.Parent, len(args)))
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY sort_order, %s",
		r.spec.Name, strings.Join(where, " AND "), r.spec.Label)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	items := []T{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("%s repository: list %w", r.spec.Name, err)
	}
	return items, nil
}

// SlugExists проверяет занятость slug среди живых записей, кроме exceptID.
func (r *CatalogRepository[T]) SlugExists(ctx context.Context, slug, exceptID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1 AND id <> $2 AND deleted_at IS NULL)", r.spec.Name)
	if err := r.db.GetContext(ctx, &exists, query, slug, exceptID); err != nil {
		return false, fmt.Errorf("%s repository: slug exists %w", r.spec.Name, err)
	}
	return exists, nil
}

// ParentExists проверяет живую запись в таблице родителя.
func (r *CatalogRepository[T]) ParentExists(ctx context.Context, table, id string) (bool, error) {
	return common.LiveExists(ctx, r.db, table, id)
}

// SoftDelete помечает запись удалённой. actor пишется в deleted_by для таблиц с аудитом.
func (r *CatalogRepository[T]) SoftDelete(ctx context.Context, id string, actor *string) error {
	var (
		res sql.Result
		err error
	)
	if r.spec.Audited {
		res, err = r.db.ExecContext(ctx, fmt.Sprintf(
			"UPDATE %s SET deleted_at = NOW(), deleted_by = $2 WHERE id = $1 AND deleted_at IS NULL", r.spec.Name), id, actor)
	} else {
		res, err = r.db.ExecContext(ctx, fmt.Sprintf(
			"UPDATE %s SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", r.spec.Name), id)
	}
	if err != nil {
		return fmt.Errorf("%s repository: soft delete %w", r.spec.Name, err)
	}
	return expectAffected(res)
}

// ToggleActive инвертирует is_active и возвращает новое значение.
func (r *CatalogRepository[T]) ToggleActive(ctx context.Context, id string) (bool, error) {
	var active bool
	query := fmt.Sprintf(
		"UPDATE %s SET is_active = NOT is_active, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL RETURNING is_active",
		r.spec.Name)
	err := r.db.GetContext(ctx, &active, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("%s repository: toggle active %w", r.spec.Name, err)
	}
	return active, nil
}

// Таблицы каталога.
var (
	RubricsTable = TableSpec{
		Name: models.TableRubrics, Label: "value",
		Columns: []string{"key", "value", "description"},
	}
	CategoriesTable = TableSpec{
		Name: models.TableCategories, Label: "value", Parent: "rubric_id", Audited: true,
		Columns: []string{"rubric_id", "value", "description", "bg"},
	}
	BrandsTable = TableSpec{
		Name: models.TableBrands, Label: "value", Parent: "rubric_id",
		Columns: []string{"key", "rubric_id", "value", "description", "logo", "country", "website"},
	}
	ShopsTable = TableSpec{
		Name: models.TableShops, Label: "value", Parent: "rubric_id",
		Columns: []string{"key", "rubric_id", "value", "description", "logo", "website", "phone", "email"},
	}
	ShopCitiesTable = TableSpec{
		Name: models.TableShopCities, Label: "city_name", Parent: "shop_id",
		Columns: []string{"shop_id", "city_name"},
	}
	MebelTable = TableSpec{
		Name: models.TableMebel, Label: "value", Audited: true,
		Columns: []string{"value", "description", "bg"},
	}
	MebelProjectsTable = TableSpec{
		Name: models.TableMebelProjects, Label: "value", Parent: "category_id", Audited: true,
		Columns: []string{"key", "category_id", "value", "description", "short_description",
			"price", "old_price", "meta", "is_featured", "is_new"},
	}
	CountertopManufacturersTable = TableSpec{
		Name: models.TableCountertopManufacturers, Label: "value", Parent: "category_id", Audited: true,
		Columns: []string{"key", "category_id", "value", "description", "logo", "website",
			"phone", "email", "country"},
	}
)
