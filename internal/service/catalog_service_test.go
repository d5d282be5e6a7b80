package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mebel-backend/internal/repository"
)

// mockCatalogStore — mock реализация CatalogStore.
type mockCatalogStore[T any] struct {
	mock.Mock
}

func (m *mockCatalogStore[T]) Insert(ctx context.Context, entity models.Entity) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *mockCatalogStore[T]) Update(ctx context.Context, entity models.Entity) error {
	return m.Called(ctx, entity).Error(0)
}

func (m *mockCatalogStore[T]) Get(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockCatalogStore[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockCatalogStore[T]) List(ctx context.Context, f repository.ListFilter) ([]T, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *mockCatalogStore[T]) SlugExists(ctx context.Context, slug, exceptID string) (bool, error) {
	args := m.Called(ctx, slug, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogStore[T]) ParentExists(ctx context.Context, table, id string) (bool, error) {
	args := m.Called(ctx, table, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCatalogStore[T]) SoftDelete(ctx context.Context, id string, actor *string) error {
	return m.Called(ctx, id, actor).Error(0)
}

func (m *mockCatalogStore[T]) ToggleActive(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func strPtr(s string) *string { return &s }

func TestCatalogService_Create_GeneratesIDKeyAndSlug(t *testing.T) {
	store := new(mockCatalogStore[models.Rubric])
	svc := NewCatalogService[models.Rubric](models.TableRubrics, store, nil)

	store.On("SlugExists", mock.Anything, "kukhni", mock.Anything).Return(true, nil).Once()
	store.On("SlugExists", mock.Anything, "kukhni-1", mock.Anything).Return(false, nil).Once()
	store.On("Insert", mock.Anything, mock.AnythingOfType("*models.Rubric")).Return(nil).Once()

	created, err := svc.Create(context.Background(), &models.Rubric{Value: "Кухни"}, "admin")
	require.NoError(t, err)

	assert.True(t, models.IsULID(created.ID))
	assert.True(t, models.IsULID(created.Key))
	assert.Equal(t, "kukhni-1", created.Slug)
	store.AssertExpectations(t)
}

func TestCatalogService_Create_EmptyValue(t *testing.T) {
	store := new(mockCatalogStore[models.Brand])
	svc := NewCatalogService[models.Brand](models.TableBrands, store, nil)

	_, err := svc.Create(context.Background(), &models.Brand{Value: "   "}, "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCatalogService_Create_MissingParent(t *testing.T) {
	store := new(mockCatalogStore[models.Category])
	svc := NewCatalogService[models.Category](models.TableCategories, store, nil)
	rubricID := models.NewID()

	store.On("ParentExists", mock.Anything, models.TableRubrics, rubricID).Return(false, nil).Once()

	_, err := svc.Create(context.Background(), &models.Category{Value: "Угловые", RubricID: &rubricID}, "admin")
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	assert.Contains(t, appErr.Fields, "rubric_id")
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCatalogService_Create_AuditFields(t *testing.T) {
	store := new(mockCatalogStore[models.Category])
	svc := NewCatalogService[models.Category](models.TableCategories, store, nil)

	store.On("SlugExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.Create(context.Background(), &models.Category{Value: "Шкафы"}, "admin")
	require.NoError(t, err)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, "admin", *created.CreatedBy)
	assert.Equal(t, "admin", *created.UpdatedBy)
	assert.Nil(t, created.DeletedBy)
}

func TestCatalogService_Create_PresetID(t *testing.T) {
	store := new(mockCatalogStore[models.CountertopManufacturer])
	svc := NewCatalogService[models.CountertopManufacturer](models.TableCountertopManufacturers, store, nil)
	preset := models.NewID()

	store.On("SlugExists", mock.Anything, mock.Anything, preset).Return(false, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	m := &models.CountertopManufacturer{Value: "Caesarstone"}
	m.ID = preset
	created, err := svc.Create(context.Background(), m, "")
	require.NoError(t, err)
	assert.Equal(t, preset, created.ID)

	bad := &models.CountertopManufacturer{Value: "Corian"}
	bad.ID = "not-a-ulid"
	_, err = svc.Create(context.Background(), bad, "")
	assert.True(t, apperror.IsValidation(err))
}

func TestCatalogService_Create_IgnoresPresetIDForOtherEntities(t *testing.T) {
	store := new(mockCatalogStore[models.Shop])
	svc := NewCatalogService[models.Shop](models.TableShops, store, nil)

	store.On("SlugExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	s := &models.Shop{Value: "Hoff"}
	s.ID = "client-chosen"
	created, err := svc.Create(context.Background(), s, "")
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", created.ID)
	assert.True(t, models.IsULID(created.ID))
}

func TestCatalogService_Create_ProjectMetaDefault(t *testing.T) {
	store := new(mockCatalogStore[models.MebelProject])
	svc := NewCatalogService[models.MebelProject](models.TableMebelProjects, store, nil)

	store.On("SlugExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	created, err := svc.Create(context.Background(), &models.MebelProject{Value: "Кухня в стиле лофт"}, "")
	require.NoError(t, err)
	assert.Equal(t, "{}", created.Meta.String())
}

func TestCatalogService_Create_SlugConflictFromStore(t *testing.T) {
	store := new(mockCatalogStore[models.Rubric])
	svc := NewCatalogService[models.Rubric](models.TableRubrics, store, nil)

	store.On("SlugExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	store.On("Insert", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists)

	_, err := svc.Create(context.Background(), &models.Rubric{Value: "Спальни"}, "")
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

func TestCatalogService_Update_KeepsSystemFields(t *testing.T) {
	store := new(mockCatalogStore[models.Brand])
	svc := NewCatalogService[models.Brand](models.TableBrands, store, nil)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	current := &models.Brand{Key: "01HKEYKEYKEYKEYKEYKEYKEYKE", Value: "Икеа"}
	current.ID, current.Slug, current.CreatedAt = models.NewID(), "ikea", created
	store.On("Get", mock.Anything, current.ID).Return(current, nil).Once()
	store.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	patch := &models.Brand{Value: "IKEA", Key: "forged", Country: strPtr("Швеция")}
	patch.ID, patch.Slug = "forged", "forged"

	updated, err := svc.Update(context.Background(), current.ID, patch, "admin")
	require.NoError(t, err)
	assert.Equal(t, current.ID, updated.ID)
	assert.Equal(t, "ikea", updated.Slug)
	assert.Equal(t, "01HKEYKEYKEYKEYKEYKEYKEYKE", updated.Key)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, "IKEA", updated.Value)
	store.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_Update_MebelRefreshesSlug(t *testing.T) {
	store := new(mockCatalogStore[models.Mebel])
	svc := NewCatalogService[models.Mebel](models.TableMebel, store, nil)

	current := &models.Mebel{Value: "Стол"}
	current.ID, current.Slug = models.NewID(), "stol"
	store.On("Get", mock.Anything, current.ID).Return(current, nil).Once()
	store.On("SlugExists", mock.Anything, "stul", current.ID).Return(false, nil).Once()
	store.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	updated, err := svc.Update(context.Background(), current.ID, &models.Mebel{Value: "Стул"}, "")
	require.NoError(t, err)
	assert.Equal(t, "stul", updated.Slug)
	store.AssertExpectations(t)
}

func TestCatalogService_Update_NotFound(t *testing.T) {
	store := new(mockCatalogStore[models.Rubric])
	svc := NewCatalogService[models.Rubric](models.TableRubrics, store, nil)

	store.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	_, err := svc.Update(context.Background(), "missing", &models.Rubric{Value: "x"}, "")
	assert.ErrorIs(t, err, apperror.ErrRecordNotFound)
}

func TestCatalogService_Get_UsesCacheUntilWrite(t *testing.T) {
	store := new(mockCatalogStore[models.Rubric])
	svc := NewCatalogService[models.Rubric](models.TableRubrics, store, NewCacheService(time.Minute))

	r := &models.Rubric{Value: "Кухни"}
	r.ID = models.NewID()
	store.On("Get", mock.Anything, r.ID).Return(r, nil).Twice()
	store.On("ToggleActive", mock.Anything, r.ID).Return(false, nil).Once()

	first, err := svc.Get(context.Background(), r.ID)
	require.NoError(t, err)
	first.Value = "изменено вызывающим"

	second, err := svc.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Кухни", second.Value)

	_, err = svc.ToggleActive(context.Background(), r.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), r.ID)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "Get", 2)
}

func TestCatalogService_FailedUpdateKeepsCachedRecord(t *testing.T) {
	store := new(mockCatalogStore[models.Category])
	svc := NewCatalogService[models.Category](models.TableCategories, store, NewCacheService(time.Minute))

	id := models.NewID()
	row := func() *models.Category {
		c := &models.Category{Value: "Угловые", Description: strPtr("исходное")}
		c.ID, c.Slug = id, "uglovye"
		return c
	}
	store.On("Get", mock.Anything, id).Return(row(), nil).Once()
	store.On("Get", mock.Anything, id).Return(row(), nil).Once()
	store.On("Get", mock.Anything, id).Return(row(), nil).Once()
	store.On("ParentExists", mock.Anything, models.TableRubrics, "01HZZZZZZZZZZZZZZZZZZZZZZZ").Return(false, nil).Once()

	cached, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "исходное", *cached.Description)

	editing, err := svc.GetForUpdate(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(`{"description":"черновик","rubric_id":"01HZZZZZZZZZZZZZZZZZZZZZZZ"}`), editing))

	_, err = svc.Update(context.Background(), id, editing, "admin")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	again, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "исходное", *again.Description)
	assert.Nil(t, again.RubricID)
	store.AssertNumberOfCalls(t, "Get", 3)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCatalogService_Delete(t *testing.T) {
	store := new(mockCatalogStore[models.Mebel])
	svc := NewCatalogService[models.Mebel](models.TableMebel, store, nil)

	store.On("SoftDelete", mock.Anything, "id-1", mock.MatchedBy(func(a *string) bool {
		return a != nil && *a == "admin"
	})).Return(nil).Once()
	store.On("SoftDelete", mock.Anything, "id-2", (*string)(nil)).Return(repository.ErrNotFound).Once()

	require.NoError(t, svc.Delete(context.Background(), "id-1", "admin"))
	assert.True(t, apperror.IsNotFound(svc.Delete(context.Background(), "id-2", "")))
}
