package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/metadata"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

type BookmarkService struct {
	repo    ports.BookmarkRepository
	folders ports.FolderRepository
	queue   ports.Enqueuer
}

// NewBookmarkService wires the service. queue may be nil, in which case new
// bookmarks are never enriched.
func NewBookmarkService(repo ports.BookmarkRepository, folders ports.FolderRepository, queue ports.Enqueuer) *BookmarkService {
	return &BookmarkService{repo: repo, folders: folders, queue: queue}
}

func (s *BookmarkService) Create(ctx context.Context, owner string, in domain.CreateBookmarkInput) (*domain.Bookmark, error) {
	rawURL := strings.TrimSpace(in.URL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	u, err := metadata.ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	if in.FolderID != nil {
		if _, err := s.ownedFolder(ctx, owner, *in.FolderID); err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = u.Hostname()
	}

	now := time.Now().UTC()
	b := &domain.Bookmark{
		UserID:          owner,
		Title:           title,
		URL:             rawURL,
		Description:     strings.TrimSpace(in.Description),
		PreviewImageURL: strings.TrimSpace(in.PreviewImageURL),
		FolderID:        in.FolderID,
		Pinned:          in.Pinned,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateBookmark(ctx, b); err != nil {
		return nil, err
	}

	s.enqueue(b)
	return b, nil
}

func (s *BookmarkService) Get(ctx context.Context, owner string, id int64) (*domain.Bookmark, error) {
	return s.owned(ctx, owner, id)
}

// List returns active bookmarks; filter.Trashed is ignored, use ListTrash
func (s *BookmarkService) List(ctx context.Context, owner string, filter domain.BookmarkFilter) ([]domain.Bookmark, error) {
	filter.Trashed = false
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListBookmarks(ctx, owner, filter)
}

func (s *BookmarkService) ListTrash(ctx context.Context, owner string) ([]domain.Bookmark, error) {
	return s.repo.ListBookmarks(ctx, owner, domain.BookmarkFilter{Trashed: true})
}

func (s *BookmarkService) UpdateMetadata(ctx context.Context, owner string, id int64, patch domain.MetadataPatch) (*domain.Bookmark, error) {
	b, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		b.Title = title
	}
	if patch.Description != nil {
		b.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.PreviewImageURL != nil {
		b.PreviewImageURL = strings.TrimSpace(*patch.PreviewImageURL)
	}

	return b, s.save(ctx, b)
}

func (s *BookmarkService) MoveToTrash(ctx context.Context, owner string, id int64) error {
	b, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	b.IsDeleted = true
	b.DeletedAt = &now
	return s.save(ctx, b)
}

func (s *BookmarkService) Restore(ctx context.Context, owner string, id int64) error {
	b, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}
	b.IsDeleted = false
	b.DeletedAt = nil
	return s.save(ctx, b)
}

// Remove deletes the bookmark permanently, trashed or not
func (s *BookmarkService) Remove(ctx context.Context, owner string, id int64) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	return s.repo.DeleteBookmark(ctx, id)
}

func (s *BookmarkService) TogglePin(ctx context.Context, owner string, id int64, pinned bool) error {
	b, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}
	b.Pinned = pinned
	return s.save(ctx, b)
}

// MoveToFolder assigns the bookmark to folderID; nil means unfiled
func (s *BookmarkService) MoveToFolder(ctx context.Context, owner string, id int64, folderID *int64) error {
	b, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}
	if folderID != nil {
		if _, err := s.ownedFolder(ctx, owner, *folderID); err != nil {
			return err
		}
	}
	b.FolderID = folderID
	return s.save(ctx, b)
}

func (s *BookmarkService) EmptyTrash(ctx context.Context, owner string) (int64, error) {
	return s.repo.DeleteTrashed(ctx, owner)
}

func (s *BookmarkService) save(ctx context.Context, b *domain.Bookmark) error {
	b.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateBookmark(ctx, b)
}

func (s *BookmarkService) enqueue(b *domain.Bookmark) {
	if s.queue == nil {
		return
	}
	s.queue.Submit(b.ID, b.URL)
}

func (s *BookmarkService) owned(ctx context.Context, owner string, id int64) (*domain.Bookmark, error) {
	b, err := s.repo.GetBookmark(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	if b.UserID != owner {
		return nil, domain.ErrUnauthorized
	}
	return b, nil
}

func (s *BookmarkService) ownedFolder(ctx context.Context, owner string, id int64) (*domain.Folder, error) {
	return ownedFolder(ctx, s.folders, owner, id)
}

func ownedFolder(ctx context.Context, repo ports.FolderRepository, owner string, id int64) (*domain.Folder, error) {
	f, err := repo.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	if f.UserID != owner {
		return nil, domain.ErrUnauthorized
	}
	return f, nil
}

var _ ports.BookmarkService = (*BookmarkService)(nil)
