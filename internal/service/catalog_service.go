package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mebel-backend/internal/repository"
	"github.com/ignatzorin/mebel-backend/internal/repository/common"
)

// CatalogStore описывает зависимости CatalogService от слоя хранилища.
type CatalogStore[T any] interface {
	Insert(ctx context.Context, entity models.Entity) error
	Update(ctx context.Context, entity models.Entity) error
	Get(ctx context.Context, id string) (*T, error)
	GetBySlug(ctx context.Context, slug string) (*T, error)
	List(ctx context.Context, f repository.ListFilter) ([]T, error)
	SlugExists(ctx context.Context, slug, exceptID string) (bool, error)
	ParentExists(ctx context.Context, table, id string) (bool, error)
	SoftDelete(ctx context.Context, id string, actor *string) error
	ToggleActive(ctx context.Context, id string) (bool, error)
}

// CatalogService — CRUD одной таблицы каталога: slug, ключи, проверка родителя и кэш чтений.
type CatalogService[T any, P models.EntityPtr[T]] struct {
	name  string
	store CatalogStore[T]
	cache *CacheService
}

// NewCatalogService создаёт сервис; name используется в ключах кэша и логах.
func NewCatalogService[T any, P models.EntityPtr[T]](name string, store CatalogStore[T], cache *CacheService) *CatalogService[T, P] {
	return &CatalogService[T, P]{name: name, store: store, cache: cache}
}

func (s *CatalogService[T, P]) Name() string {
	return s.name
}

// List возвращает живые записи по фильтру.
func (s *CatalogService[T, P]) List(ctx context.Context, f repository.ListFilter) ([]T, error) {
	key := fmt.Sprintf("%s:list:%s:%s:%d:%d", s.name, activeKey(f.Active), f.ParentID, f.Limit, f.Offset)
	items, err := GetOrSet(s.cache, key, func() ([]T, error) {
		return s.store.List(ctx, f)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить список")
	}
	return items, nil
}

// Get возвращает запись по id.
func (s *CatalogService[T, P]) Get(ctx context.Context, id string) (P, error) {
	item, err := GetOrSet(s.cache, s.name+":id:"+id, func() (*T, error) {
		return s.store.Get(ctx, id)
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	copied := *item
	return P(&copied), nil
}

// GetForUpdate читает запись мимо кэша: результат можно изменять, не затрагивая публичные чтения.
func (s *CatalogService[T, P]) GetForUpdate(ctx context.Context, id string) (P, error) {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	return P(item), nil
}

// GetBySlug возвращает запись по slug.
func (s *CatalogService[T, P]) GetBySlug(ctx context.Context, slug string) (P, error) {
	item, err := GetOrSet(s.cache, s.name+":slug:"+slug, func() (*T, error) {
		return s.store.GetBySlug(ctx, slug)
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	copied := *item
	return P(&copied), nil
}

// Create генерирует id, ключ и уникальный slug, проверяет родителя и сохраняет запись.
func (s *CatalogService[T, P]) Create(ctx context.Context, entity P, actor string) (P, error) {
	rec := entity.Record()

	preset, _ := any(entity).(models.PresetIDAllowed)
	switch {
	case preset != nil && preset.AllowsPresetID() && rec.ID != "":
		if !models.IsULID(rec.ID) {
			return nil, apperror.Validation("Ошибка валидации", map[string][]string{"id": {"должен быть корректным ULID"}})
		}
	default:
		rec.ID = models.NewID()
	}

	if keyed, ok := any(entity).(models.Keyed); ok {
		*keyed.KeyRef() = models.NewID()
	}
	if audited, ok := any(entity).(models.Audited); ok && actor != "" {
		a := audited.AuditRef()
		a.CreatedBy, a.UpdatedBy, a.DeletedBy = &actor, &actor, nil
	}
	if d, ok := any(entity).(models.Defaulter); ok {
		d.ApplyDefaults()
	}

	if err := s.validate(ctx, entity); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, entity.SlugSource(), func(ctx context.Context, c string) (bool, error) {
		return s.store.SlugExists(ctx, c, rec.ID)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сгенерировать slug")
	}
	rec.Slug = slug

	if err := s.store.Insert(ctx, entity); err != nil {
		return nil, s.mapError(err)
	}
	s.invalidate()

	logger.Log.WithFields(logrus.Fields{"entity": s.name, "id": rec.ID, "slug": rec.Slug}).Info("catalog: запись создана")
	return entity, nil
}

// Update применяет к записи частичные изменения, уже наложенные на entity поверх текущих значений.
// Системные поля восстанавливаются из БД; slug меняется только у сущностей с SlugRefresher.
func (s *CatalogService[T, P]) Update(ctx context.Context, id string, entity P, actor string) (P, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}
	existing := P(current)
	was := existing.Record()

	rec := entity.Record()
	rec.ID = was.ID
	rec.Slug = was.Slug
	rec.CreatedAt = was.CreatedAt
	rec.UpdatedAt = was.UpdatedAt
	rec.DeletedAt = nil

	if keyed, ok := any(entity).(models.Keyed); ok {
		*keyed.KeyRef() = *any(existing).(models.Keyed).KeyRef()
	}
	if audited, ok := any(entity).(models.Audited); ok {
		prev := any(existing).(models.Audited).AuditRef()
		a := audited.AuditRef()
		a.CreatedBy, a.DeletedBy = prev.CreatedBy, prev.DeletedBy
		if actor != "" {
			a.UpdatedBy = &actor
		}
	}
	if d, ok := any(entity).(models.Defaulter); ok {
		d.ApplyDefaults()
	}

	if err := s.validate(ctx, entity); err != nil {
		return nil, err
	}

	if r, ok := any(entity).(models.SlugRefresher); ok && r.RefreshSlugOnUpdate() &&
		entity.SlugSource() != existing.SlugSource() {
		slug, err := uniqueSlug(ctx, entity.SlugSource(), func(ctx context.Context, c string) (bool, error) {
			return s.store.SlugExists(ctx, c, rec.ID)
		})
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сгенерировать slug")
		}
		rec.Slug = slug
	}

	if err := s.store.Update(ctx, entity); err != nil {
		return nil, s.mapError(err)
	}
	s.invalidate()
	return entity, nil
}

// Delete мягко удаляет запись.
func (s *CatalogService[T, P]) Delete(ctx context.Context, id, actor string) error {
	var by *string
	if actor != "" {
		by = &actor
	}
	if err := s.store.SoftDelete(ctx, id, by); err != nil {
		return s.mapError(err)
	}
	s.invalidate()
	logger.Log.WithFields(logrus.Fields{"entity": s.name, "id": id}).Info("catalog: запись удалена")
	return nil
}

// ToggleActive переключает видимость записи.
func (s *CatalogService[T, P]) ToggleActive(ctx context.Context, id string) (bool, error) {
	active, err := s.store.ToggleActive(ctx, id)
	if err != nil {
		return false, s.mapError(err)
	}
	s.invalidate()
	return active, nil
}

func (s *CatalogService[T, P]) validate(ctx context.Context, entity P) error {
	if strings.TrimSpace(entity.SlugSource()) == "" {
		return apperror.Validation("Ошибка валидации", map[string][]string{"value": {"обязательное поле"}})
	}

	parent := entity.Parent()
	if parent.Table == "" || parent.ID == nil {
		return nil
	}
	ok, err := s.store.ParentExists(ctx, parent.Table, *parent.ID)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить родительскую запись")
	}
	if !ok {
		return apperror.Validation("Ошибка валидации", map[string][]string{
			parentField(parent.Table): {"связанная запись не найдена"},
		})
	}
	return nil
}

func (s *CatalogService[T, P]) mapError(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return apperror.ErrRecordNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "запись с таким slug или ключом уже существует")
	default:
		return apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка хранилища")
	}
}

func (s *CatalogService[T, P]) invalidate() {
	s.cache.InvalidateByPrefix(s.name + ":")
}

func parentField(table string) string {
	switch table {
	case models.TableRubrics:
		return "rubric_id"
	case models.TableShops:
		return "shop_id"
	case models.TableCategories:
		return "category_id"
	}
	return "parent_id"
}

func activeKey(active *bool) string {
	if active == nil {
		return "all"
	}
	if *active {
		return "active"
	}
	return "inactive"
}
