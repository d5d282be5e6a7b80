package models

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID возвращает новый ULID в каноническом строковом виде.
func NewID() string {
	return ulid.Make().String()
}

// IsULID проверяет, что строка является корректным ULID.
func IsULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Base — общие колонки всех таблиц каталога.
type Base struct {
	ID        string     `db:"id" json:"id"`
	Slug      string     `db:"slug" json:"slug"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	SortOrder int        `db:"sort_order" json:"sort_order" binding:"gte=0"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

func (b *Base) Record() *Base { return b }

// Audit — кто создал, изменил и удалил запись.
type Audit struct {
	CreatedBy *string `db:"created_by" json:"created_by"`
	UpdatedBy *string `db:"updated_by" json:"updated_by"`
	DeletedBy *string `db:"deleted_by" json:"-"`
}

func (a *Audit) AuditRef() *Audit { return a }

// ParentRef указывает на родительскую запись, существование которой проверяется при записи.
type ParentRef struct {
	Table string
	ID    *string
}

// Entity реализуют все сущности каталога.
type Entity interface {
	Record() *Base
	// SlugSource — значение, из которого строится slug.
	SlugSource() string
	Parent() ParentRef
}

// EntityPtr связывает тип сущности с его указателем для generic сервисов и хэндлеров.
type EntityPtr[T any] interface {
	*T
	Entity
}

// Keyed — сущности со служебным ключом, который генерируется при создании.
type Keyed interface {
	KeyRef() *string
}

// Audited — сущности с колонками created_by/updated_by/deleted_by.
type Audited interface {
	AuditRef() *Audit
}

// SlugRefresher — сущности, slug которых пересчитывается при смене значения.
type SlugRefresher interface {
	RefreshSlugOnUpdate() bool
}

// Defaulter заполняет значения по умолчанию перед записью.
type Defaulter interface {
	ApplyDefaults()
}

// PresetIDAllowed — сущности, которым можно передать id при создании.
type PresetIDAllowed interface {
	AllowsPresetID() bool
}
