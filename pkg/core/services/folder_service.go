package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

type FolderService struct {
	repo ports.FolderRepository
}

func NewFolderService(repo ports.FolderRepository) *FolderService {
	return &FolderService{repo: repo}
}

func (s *FolderService) Create(ctx context.Context, owner, name, color string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	folder := &domain.Folder{
		UserID:    owner,
		Name:      name,
		Color:     strings.TrimSpace(color),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (s *FolderService) Get(ctx context.Context, owner string, id int64) (*domain.Folder, error) {
	return ownedFolder(ctx, s.repo, owner, id)
}

func (s *FolderService) List(ctx context.Context, owner string) ([]domain.Folder, error) {
	return s.repo.ListFolders(ctx, owner)
}

// Update changes the fields that are non-nil
func (s *FolderService) Update(ctx context.Context, owner string, id int64, name, color *string) (*domain.Folder, error) {
	folder, err := ownedFolder(ctx, s.repo, owner, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, fmt.Errorf("%w: folder name is required", domain.ErrInvalidInput)
		}
		folder.Name = n
	}
	if color != nil {
		folder.Color = strings.TrimSpace(*color)
	}
	folder.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Delete removes the folder; its bookmarks become unfiled
func (s *FolderService) Delete(ctx context.Context, owner string, id int64) error {
	if _, err := ownedFolder(ctx, s.repo, owner, id); err != nil {
		return err
	}
	return s.repo.DeleteFolder(ctx, id)
}

var _ ports.FolderService = (*FolderService)(nil)
