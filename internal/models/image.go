package models

import "time"

// MaxImagesPerParent — предел живых изображений у одной сущности.
const MaxImagesPerParent = 8

// Image — файл, прикреплённый к любой сущности через пару parentable_type/parentable_id.
type Image struct {
	ID             string     `db:"id" json:"id"`
	Key            string     `db:"key" json:"key"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	Hash           string     `db:"hash" json:"hash"`
	Filename       string     `db:"filename" json:"filename"`
	OriginalName   string     `db:"original_name" json:"original_name"`
	MimeType       string     `db:"mime_type" json:"mime_type"`
	Size           int64      `db:"size" json:"size"`
	Path           string     `db:"path" json:"path"`
	ParentableType string     `db:"parentable_type" json:"parentable_type"`
	ParentableID   string     `db:"parentable_id" json:"parentable_id"`
	SortOrder      int        `db:"sort_order" json:"sort_order"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"-"`

	URL string `db:"-" json:"url"`
}
