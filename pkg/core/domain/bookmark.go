package domain

import "time"

// Bookmark represents a saved URL owned by a single user
type Bookmark struct {
	ID              int64      `json:"id" yaml:"id" db:"id"`
	UserID          string     `json:"user_id" yaml:"user_id" db:"user_id"`
	Title           string     `json:"title" yaml:"title" db:"title"`
	URL             string     `json:"url" yaml:"url" db:"url"`
	Description     string     `json:"description" yaml:"description" db:"description"`
	PreviewImageURL string     `json:"preview_image_url" yaml:"preview_image_url" db:"preview_image_url"`
	FolderID        *int64     `json:"folder_id" yaml:"folder_id" db:"folder_id"` // nil = unfiled
	Pinned          bool       `json:"pinned" yaml:"pinned" db:"pinned"`
	IsDeleted       bool       `json:"is_deleted" yaml:"is_deleted" db:"is_deleted"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt       time.Time  `json:"created_at" yaml:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

// BookmarkFilter narrows a bookmark listing
type BookmarkFilter struct {
	FolderID *int64
	Search   string
	Pinned   *bool
	Trashed  bool
}

// CreateBookmarkInput carries the fields accepted when saving a bookmark
type CreateBookmarkInput struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	PreviewImageURL string `json:"preview_image_url"`
	FolderID        *int64 `json:"folder_id"`
	Pinned          bool   `json:"pinned"`
}

// MetadataPatch is a partial update; nil fields are left untouched
type MetadataPatch struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	PreviewImageURL *string `json:"preview_image_url,omitempty"`
}
