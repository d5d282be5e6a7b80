package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/repository/common"
)

func TestCatalogRepository_Insert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.Rubric](db, RubricsTable)
	now := time.Now()

	rubric := &models.Rubric{Key: "01KEY", Value: "Кухни"}
	rubric.ID = "01ID"
	rubric.Slug = "kukhni"
	rubric.IsActive = true

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO rubrics (id, slug, is_active, sort_order, key, value, description) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at")).
		WithArgs("01ID", "kukhni", true, 0, "01KEY", "Кухни", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Insert(context.Background(), rubric))
	assert.Equal(t, now, rubric.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_Insert_AuditedColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.Mebel](db, MebelTable)
	actor := "admin"

	m := &models.Mebel{Value: "Шкаф"}
	m.ID, m.Slug = "01ID", "shkaf"
	m.CreatedBy, m.UpdatedBy = &actor, &actor

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO mebel (id, slug, is_active, sort_order, value, description, bg, created_by, updated_by)")).
		WithArgs("01ID", "shkaf", false, 0, "Шкаф", nil, nil, "admin", "admin").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	require.NoError(t, repo.Insert(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_Insert_UniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.Rubric](db, RubricsTable)

	mock.ExpectQuery("INSERT INTO rubrics").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Insert(context.Background(), &models.Rubric{Value: "Кухни"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestCatalogRepository_Update_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.ShopCity](db, ShopCitiesTable)

	city := &models.ShopCity{ShopID: "01SHOP", CityName: "Казань"}
	city.ID = "01ID"

	mock.ExpectQuery(regexp.QuoteMeta(
		"UPDATE shop_cities SET slug = $1, is_active = $2, sort_order = $3, shop_id = $4, city_name = $5, updated_at = NOW() WHERE id = $6 AND deleted_at IS NULL RETURNING updated_at")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), city)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_List_Filters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.Brand](db, BrandsTable)
	active := true

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM brands WHERE deleted_at IS NULL AND is_active = $1 AND rubric_id = $2 ORDER BY sort_order, value LIMIT $3 OFFSET $4")).
		WithArgs(true, "01RUB", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "value", "slug"}).AddRow("01B", "IKEA", "ikea"))

	items, err := repo.List(context.Background(), ListFilter{Active: &active, ParentID: "01RUB", Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ikea", items[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_List_ParentIgnoredWithoutColumn(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.Mebel](db, MebelTable)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM mebel WHERE deleted_at IS NULL ORDER BY sort_order, value")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := repo.List(context.Background(), ListFilter{ParentID: "whatever"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_SlugExists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.Rubric](db, RubricsTable)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM rubrics WHERE slug = $1 AND id <> $2 AND deleted_at IS NULL)")).
		WithArgs("kukhni", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.SlugExists(context.Background(), "kukhni", "")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCatalogRepository_SoftDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	actor := "admin"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET deleted_at = NOW(), deleted_by = $2 WHERE id = $1")).
		WithArgs("01C", &actor).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE brands SET deleted_at = NOW() WHERE id = $1")).
		WithArgs("01B").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewCatalogRepository[models.Category](db, CategoriesTable).SoftDelete(context.Background(), "01C", &actor))
	err := NewCatalogRepository[models.Brand](db, BrandsTable).SoftDelete(context.Background(), "01B", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepository_ParentExists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository[models.Category](db, CategoriesTable)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM rubrics WHERE id = $1 AND deleted_at IS NULL)")).
		WithArgs("01R").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.ParentExists(context.Background(), models.TableRubrics, "01R")
	require.NoError(t, err)
	assert.False(t, ok)
}
