package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
	"github.com/wadjakorntonsri/rendium/pkg/ports"
)

// likeEscaper makes a search term match literally inside LIKE ... ESCAPE '\'
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	raw, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// one writer at a time; also keeps in-memory databases alive
		raw.SetMaxOpenConns(1)
	}

	// both drivers take "?" placeholders
	db := sqlx.NewDb(raw, "sqlite3")

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sqlx.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS folders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_folders_user_id ON folders(user_id);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		preview_image_url TEXT NOT NULL DEFAULT '',
		folder_id INTEGER,
		pinned BOOLEAN NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		deleted_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(folder_id) REFERENCES folders(id) ON DELETE SET NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_user_id ON bookmarks(user_id, is_deleted);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_folder_id ON bookmarks(folder_id);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_pinned ON bookmarks(pinned);
	`
	_, err := db.Exec(query)
	return err
}

const bookmarkColumns = `id, user_id, title, url, description, preview_image_url, folder_id,
	pinned, is_deleted, deleted_at, created_at, updated_at`

const folderColumns = `id, user_id, name, color, created_at, updated_at`

// withTx runs fn inside a transaction, rolling back on error or panic
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// --- Bookmark Repository Implementation ---

func (r *SQLiteRepository) CreateBookmark(ctx context.Context, b *domain.Bookmark) error {
	query := `INSERT INTO bookmarks (user_id, title, url, description, preview_image_url, folder_id,
				pinned, is_deleted, deleted_at, created_at, updated_at)
			  VALUES (:user_id, :title, :url, :description, :preview_image_url, :folder_id,
				:pinned, :is_deleted, :deleted_at, :created_at, :updated_at)`

	res, err := r.db.NamedExecContext(ctx, query, b)
	if err != nil {
		return fmt.Errorf("insert bookmark %s: %w", b.URL, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *SQLiteRepository) GetBookmark(ctx context.Context, id int64) (*domain.Bookmark, error) {
	var b domain.Bookmark
	err := r.db.GetContext(ctx, &b, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *SQLiteRepository) UpdateBookmark(ctx context.Context, b *domain.Bookmark) error {
	query := `UPDATE bookmarks SET title = :title, url = :url, description = :description,
				preview_image_url = :preview_image_url, folder_id = :folder_id, pinned = :pinned,
				is_deleted = :is_deleted, deleted_at = :deleted_at, updated_at = :updated_at
			  WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, b)
	return err
}

func (r *SQLiteRepository) DeleteBookmark(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) ListBookmarks(ctx context.Context, userID string, filter domain.BookmarkFilter) ([]domain.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks WHERE user_id = ? AND is_deleted = ?`
	args := []interface{}{userID, filter.Trashed}

	if filter.FolderID != nil {
		query += " AND folder_id = ?"
		args = append(args, *filter.FolderID)
	}
	if filter.Pinned != nil {
		query += " AND pinned = ?"
		args = append(args, *filter.Pinned)
	}
	if filter.Search != "" {
		like := "%" + likeEscaper.Replace(filter.Search) + "%"
		query += ` AND (title LIKE ? ESCAPE '\' OR url LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`
		args = append(args, like, like, like)
	}

	query += " ORDER BY created_at DESC, id DESC"

	bookmarks := []domain.Bookmark{}
	if err := r.db.SelectContext(ctx, &bookmarks, query, args...); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (r *SQLiteRepository) DeleteTrashed(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = ? AND is_deleted = ?`, userID, true)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) DeleteAllBookmarks(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- Folder Repository Implementation ---

func (r *SQLiteRepository) CreateFolder(ctx context.Context, f *domain.Folder) error {
	query := `INSERT INTO folders (user_id, name, color, created_at, updated_at)
			  VALUES (:user_id, :name, :color, :created_at, :updated_at)`

	res, err := r.db.NamedExecContext(ctx, query, f)
	if err != nil {
		return fmt.Errorf("insert folder %s: %w", f.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (r *SQLiteRepository) GetFolder(ctx context.Context, id int64) (*domain.Folder, error) {
	var f domain.Folder
	err := r.db.GetContext(ctx, &f, `SELECT `+folderColumns+` FROM folders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *SQLiteRepository) UpdateFolder(ctx context.Context, f *domain.Folder) error {
	query := `UPDATE folders SET name = :name, color = :color, updated_at = :updated_at WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, f)
	return err
}

// DeleteFolder removes the folder and moves its bookmarks back to unfiled.
// Foreign keys are not enforced on every driver, so the unassign is explicit.
func (r *SQLiteRepository) DeleteFolder(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookmarks SET folder_id = NULL, updated_at = ? WHERE folder_id = ?`,
			time.Now().UTC(), id); err != nil {
			return fmt.Errorf("unassign bookmarks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete folder: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) ListFolders(ctx context.Context, userID string) ([]domain.Folder, error) {
	folders := []domain.Folder{}
	err := r.db.SelectContext(ctx, &folders,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = ? ORDER BY name ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *SQLiteRepository) DeleteAllFolders(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bookmarks SET folder_id = NULL WHERE folder_id IN (SELECT id FROM folders WHERE user_id = ?)`,
			userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM folders WHERE user_id = ?`, userID)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// Ensure interface compliance
var (
	_ ports.BookmarkRepository = (*SQLiteRepository)(nil)
	_ ports.FolderRepository   = (*SQLiteRepository)(nil)
)
