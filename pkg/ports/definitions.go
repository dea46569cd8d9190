package ports

import (
	"context"
	"io"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
)

// BookmarkRepository defines storage operations for bookmarks.
// Getters return (nil, nil) when the row does not exist.
type BookmarkRepository interface {
	CreateBookmark(ctx context.Context, b *domain.Bookmark) error
	GetBookmark(ctx context.Context, id int64) (*domain.Bookmark, error)
	UpdateBookmark(ctx context.Context, b *domain.Bookmark) error
	DeleteBookmark(ctx context.Context, id int64) error // permanent
	ListBookmarks(ctx context.Context, userID string, filter domain.BookmarkFilter) ([]domain.Bookmark, error)
	DeleteTrashed(ctx context.Context, userID string) (int64, error)
	DeleteAllBookmarks(ctx context.Context, userID string) (int64, error)
}

// FolderRepository defines storage operations for folders
type FolderRepository interface {
	CreateFolder(ctx context.Context, f *domain.Folder) error
	GetFolder(ctx context.Context, id int64) (*domain.Folder, error)
	UpdateFolder(ctx context.Context, f *domain.Folder) error
	DeleteFolder(ctx context.Context, id int64) error // also unassigns its bookmarks
	ListFolders(ctx context.Context, userID string) ([]domain.Folder, error)
	DeleteAllFolders(ctx context.Context, userID string) (int64, error)
}

// MetadataFetcher is the strict extraction pipeline
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (domain.Metadata, error)
}

// MetadataExtractor is the soft extraction: only URL parse errors surface
type MetadataExtractor interface {
	Extract(ctx context.Context, rawURL string) (domain.Metadata, error)
}

// MetadataSink persists enrichment results onto an existing bookmark
type MetadataSink interface {
	ApplyMetadata(ctx context.Context, bookmarkID int64, m domain.Metadata) error
}

// Enqueuer accepts deferred enrichment work; it must never block
type Enqueuer interface {
	Submit(bookmarkID int64, rawURL string) bool
}

// BookmarkService defines bookmark operations scoped to an owner
type BookmarkService interface {
	Create(ctx context.Context, owner string, in domain.CreateBookmarkInput) (*domain.Bookmark, error)
	Get(ctx context.Context, owner string, id int64) (*domain.Bookmark, error)
	List(ctx context.Context, owner string, filter domain.BookmarkFilter) ([]domain.Bookmark, error)
	ListTrash(ctx context.Context, owner string) ([]domain.Bookmark, error)
	UpdateMetadata(ctx context.Context, owner string, id int64, patch domain.MetadataPatch) (*domain.Bookmark, error)
	MoveToTrash(ctx context.Context, owner string, id int64) error
	Restore(ctx context.Context, owner string, id int64) error
	Remove(ctx context.Context, owner string, id int64) error
	TogglePin(ctx context.Context, owner string, id int64, pinned bool) error
	MoveToFolder(ctx context.Context, owner string, id int64, folderID *int64) error
	EmptyTrash(ctx context.Context, owner string) (int64, error)
}

// FolderService defines folder operations scoped to an owner
type FolderService interface {
	Create(ctx context.Context, owner, name, color string) (*domain.Folder, error)
	Get(ctx context.Context, owner string, id int64) (*domain.Folder, error)
	List(ctx context.Context, owner string) ([]domain.Folder, error)
	Update(ctx context.Context, owner string, id int64, name, color *string) (*domain.Folder, error)
	Delete(ctx context.Context, owner string, id int64) error
}

// TransferService moves whole collections in and out of the store
type TransferService interface {
	Import(ctx context.Context, owner, text string) (*domain.ImportSummary, error)
	Export(ctx context.Context, owner string, w io.Writer) error
	ClearAll(ctx context.Context, owner string) error
}
