package models

import "github.com/jmoiron/sqlx/types"

// Таблицы каталога.
const (
	TableRubrics                 = "rubrics"
	TableCategories              = "categories"
	TableBrands                  = "brands"
	TableShops                   = "shops"
	TableShopCities              = "shop_cities"
	TableMebel                   = "mebel"
	TableMebelProjects           = "mebel_projects"
	TableCountertopManufacturers = "countertop_manufacturers"
)

// Rubric — верхний уровень таксономии.
type Rubric struct {
	Base
	Key         string  `db:"key" json:"key"`
	Value       string  `db:"value" json:"value" binding:"required,max=255"`
	Description *string `db:"description" json:"description"`
}

func (r *Rubric) SlugSource() string { return r.Value }
func (r *Rubric) Parent() ParentRef  { return ParentRef{} }
func (r *Rubric) KeyRef() *string    { return &r.Key }

type Category struct {
	Base
	Audit
	RubricID    *string `db:"rubric_id" json:"rubric_id"`
	Value       string  `db:"value" json:"value" binding:"required,max=255"`
	Description *string `db:"description" json:"description"`
	Bg          *string `db:"bg" json:"bg" binding:"omitempty,max=255"`
}

func (c *Category) SlugSource() string { return c.Value }
func (c *Category) Parent() ParentRef  { return ParentRef{Table: TableRubrics, ID: c.RubricID} }

type Brand struct {
	Base
	Key         string  `db:"key" json:"key"`
	RubricID    *string `db:"rubric_id" json:"rubric_id"`
	Value       string  `db:"value" json:"value" binding:"required,max=255"`
	Description *string `db:"description" json:"description"`
	Logo        *string `db:"logo" json:"logo" binding:"omitempty,max=500"`
	Country     *string `db:"country" json:"country" binding:"omitempty,max=100"`
	Website     *string `db:"website" json:"website" binding:"omitempty,url,max=255"`
}

func (b *Brand) SlugSource() string { return b.Value }
func (b *Brand) Parent() ParentRef  { return ParentRef{Table: TableRubrics, ID: b.RubricID} }
func (b *Brand) KeyRef() *string    { return &b.Key }

type Shop struct {
	Base
	Key         string  `db:"key" json:"key"`
	RubricID    *string `db:"rubric_id" json:"rubric_id"`
	Value       string  `db:"value" json:"value" binding:"required,max=255"`
	Description *string `db:"description" json:"description"`
	Logo        *string `db:"logo" json:"logo" binding:"omitempty,max=500"`
	Website     *string `db:"website" json:"website" binding:"omitempty,url,max=255"`
	Phone       *string `db:"phone" json:"phone" binding:"omitempty,max=50"`
	Email       *string `db:"email" json:"email" binding:"omitempty,email,max=255"`
}

func (s *Shop) SlugSource() string { return s.Value }
func (s *Shop) Parent() ParentRef  { return ParentRef{Table: TableRubrics, ID: s.RubricID} }
func (s *Shop) KeyRef() *string    { return &s.Key }

// ShopCity — город присутствия магазина.
type ShopCity struct {
	Base
	ShopID   string `db:"shop_id" json:"shop_id" binding:"required"`
	CityName string `db:"city_name" json:"city_name" binding:"required,max=255"`
}

func (s *ShopCity) SlugSource() string { return s.CityName }
func (s *ShopCity) Parent() ParentRef  { return ParentRef{Table: TableShops, ID: &s.ShopID} }

// Mebel — вид мебели. Slug следует за значением.
type Mebel struct {
	Base
	Audit
	Value       string  `db:"value" json:"value" binding:"required,max=255"`
	Description *string `db:"description" json:"description"`
	Bg          *string `db:"bg" json:"bg" binding:"omitempty,max=255"`
}

func (m *Mebel) SlugSource() string        { return m.Value }
func (m *Mebel) Parent() ParentRef         { return ParentRef{} }
func (m *Mebel) RefreshSlugOnUpdate() bool { return true }

type MebelProject struct {
	Base
	Audit
	Key              string         `db:"key" json:"key"`
	CategoryID       *string        `db:"category_id" json:"category_id"`
	Value            string         `db:"value" json:"value" binding:"required,max=255"`
	Description      *string        `db:"description" json:"description"`
	ShortDescription *string        `db:"short_description" json:"short_description" binding:"omitempty,max=500"`
	Price            *float64       `db:"price" json:"price" binding:"omitempty,gte=0"`
	OldPrice         *float64       `db:"old_price" json:"old_price" binding:"omitempty,gte=0"`
	Meta             types.JSONText `db:"meta" json:"meta"`
	IsFeatured       bool           `db:"is_featured" json:"is_featured"`
	IsNew            bool           `db:"is_new" json:"is_new"`
}

func (p *MebelProject) SlugSource() string { return p.Value }
func (p *MebelProject) Parent() ParentRef  { return ParentRef{Table: TableCategories, ID: p.CategoryID} }
func (p *MebelProject) KeyRef() *string    { return &p.Key }

func (p *MebelProject) ApplyDefaults() {
	if len(p.Meta) == 0 {
		p.Meta = types.JSONText("{}")
	}
}

type CountertopManufacturer struct {
	Base
	Audit
	Key         string  `db:"key" json:"key"`
	CategoryID  *string `db:"category_id" json:"category_id"`
	Value       string  `db:"value" json:"value" binding:"required,max=255"`
	Description *string `db:"description" json:"description"`
	Logo        *string `db:"logo" json:"logo" binding:"omitempty,max=500"`
	Website     *string `db:"website" json:"website" binding:"omitempty,url,max=255"`
	Phone       *string `db:"phone" json:"phone" binding:"omitempty,max=50"`
	Email       *string `db:"email" json:"email" binding:"omitempty,email,max=255"`
	Country     *string `db:"country" json:"country" binding:"omitempty,max=100"`
}

func (m *CountertopManufacturer) SlugSource() string   { return m.Value }
func (m *CountertopManufacturer) Parent() ParentRef    { return ParentRef{Table: TableCategories, ID: m.CategoryID} }
func (m *CountertopManufacturer) KeyRef() *string      { return &m.Key }
func (m *CountertopManufacturer) AllowsPresetID() bool { return true }
