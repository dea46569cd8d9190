package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wadjakorntonsri/rendium/pkg/bookio"
	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/logger"
	"github.com/wadjakorntonsri/rendium/pkg/metadata"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

// TransferService handles whole-collection operations: bookmark file
// import and export, and wiping a user's data.
type TransferService struct {
	bookmarks ports.BookmarkRepository
	folders   ports.FolderRepository
	queue     ports.Enqueuer
	log       logger.Logger
}

func NewTransferService(bookmarks ports.BookmarkRepository, folders ports.FolderRepository, queue ports.Enqueuer, log logger.Logger) *TransferService {
	if log == nil {
		log = logger.NewNop()
	}
	return &TransferService{bookmarks: bookmarks, folders: folders, queue: queue, log: log}
}

// Import persists a parsed bookmark file. Every folder draft becomes a new
// folder, even when the owner already has one with the same name. Records
// without a usable URL are skipped.
func (s *TransferService) Import(ctx context.Context, owner, text string) (*domain.ImportSummary, error) {
	res := bookio.ImportFile(text)
	summary := &domain.ImportSummary{}

	folderIDs := make(map[string]int64, len(res.Folders))
	for _, draft := range res.Folders {
		now := time.Now().UTC()
		f := &domain.Folder{
			UserID:    owner,
			Name:      draft.Name,
			Color:     draft.Color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.folders.CreateFolder(ctx, f); err != nil {
			return summary, fmt.Errorf("import folder %q: %w", draft.Name, err)
		}
		folderIDs[draft.Name] = f.ID
		summary.FoldersCreated++
	}

	for _, rec := range res.Records {
		u, err := metadata.ParseTarget(rec.URL)
		if rec.URL == "" || err != nil {
			summary.Skipped++
			continue
		}

		title := rec.Title
		if title == "" {
			title = u.Hostname()
		}

		now := time.Now().UTC()
		b := &domain.Bookmark{
			UserID:    owner,
			Title:     title,
			URL:       strings.TrimSpace(rec.URL),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if rec.FolderName != nil {
			if id, ok := folderIDs[*rec.FolderName]; ok {
				b.FolderID = &id
			}
		}

		if err := s.bookmarks.CreateBookmark(ctx, b); err != nil {
			return summary, fmt.Errorf("import bookmark %s: %w", rec.URL, err)
		}
		summary.Imported++

		if s.queue != nil {
			s.queue.Submit(b.ID, b.URL)
		}
	}

	s.log.Info("bookmark file imported",
		logger.String("owner", owner),
		logger.Int("imported", summary.Imported),
		logger.Int("skipped", summary.Skipped),
		logger.Int("folders", summary.FoldersCreated))

	return summary, nil
}

// Export writes the owner's folders and active bookmarks as a Netscape
// bookmark file.
func (s *TransferService) Export(ctx context.Context, owner string, w io.Writer) error {
	folders, err := s.folders.ListFolders(ctx, owner)
	if err != nil {
		return err
	}
	bookmarks, err := s.bookmarks.ListBookmarks(ctx, owner, domain.BookmarkFilter{})
	if err != nil {
		return err
	}
	return bookio.WriteNetscape(w, folders, bookmarks)
}

// ClearAll permanently removes every bookmark (trashed included) and every
// folder of the owner.
func (s *TransferService) ClearAll(ctx context.Context, owner string) error {
	nb, err := s.bookmarks.DeleteAllBookmarks(ctx, owner)
	if err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	nf, err := s.folders.DeleteAllFolders(ctx, owner)
	if err != nil {
		return fmt.Errorf("clear folders: %w", err)
	}

	s.log.Info("user data cleared",
		logger.String("owner", owner),
		logger.Int64("bookmarks", nb),
		logger.Int64("folders", nf))
	return nil
}

var _ ports.TransferService = (*TransferService)(nil)
