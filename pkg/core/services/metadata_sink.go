package services

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

// MetadataSink writes enrichment results straight to the repository. It
// runs on behalf of the system, so there is no owner check.
type MetadataSink struct {
	repo ports.BookmarkRepository
}

func NewMetadataSink(repo ports.BookmarkRepository) *MetadataSink {
	return &MetadataSink{repo: repo}
}

// ApplyMetadata always replaces the title; description and image only
// when the fetch produced one. A bookmark deleted in the meantime is
// ignored.
func (s *MetadataSink) ApplyMetadata(ctx context.Context, bookmarkID int64, m domain.Metadata) error {
	b, err := s.repo.GetBookmark(ctx, bookmarkID)
	if err != nil {
		return err
	}
	if b == nil {
		return nil
	}

	if m.Title != "" {
		b.Title = m.Title
	}
	if m.Description != "" {
		b.Description = m.Description
	}
	if m.PreviewImageURL != "" {
		b.PreviewImageURL = m.PreviewImageURL
	}
	b.UpdatedAt = time.Now().UTC()

	return s.repo.UpdateBookmark(ctx, b)
}

var _ ports.MetadataSink = (*MetadataSink)(nil)
