package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/pinsync/pinsync/internal/domain"
)

// ErrNotFound is returned when a bookmark does not exist or is not visible
// to the requesting owner.
var ErrNotFound = errors.New("bookmark not found")

// Repository persists bookmarks in SQLite.
type Repository struct {
	db  *sql.DB
	now func() time.Time // injectable for tests
}

// New opens (or creates) the database at dbURL and runs migrations.
func New(dbURL string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS bookmarks (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		target_url TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		deleted_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_created
		ON bookmarks(owner_id, created_at DESC);
	`
	_, err := db.Exec(query)
	return err
}

// Insert stores a new bookmark, assigning its ID and CreatedAt server-side.
// The returned record is fully populated.
func (r *Repository) Insert(ctx context.Context, ownerID, title, targetURL string) (*domain.Bookmark, error) {
	now := r.now().UTC()
	b := &domain.Bookmark{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		OwnerID:   ownerID,
		Title:     title,
		TargetURL: targetURL,
		CreatedAt: now,
	}

	query := `INSERT INTO bookmarks (id, owner_id, title, target_url, created_at)
			  VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, b.ID, b.OwnerID, b.Title, b.TargetURL, b.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert bookmark: %w", err)
	}

	return b, nil
}

// ListByOwner returns all live bookmarks for an owner, newest first. This is
// the snapshot query each session initializes from.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Bookmark, error) {
	query := `SELECT id, owner_id, title, target_url, created_at
			  FROM bookmarks
			  WHERE owner_id = ? AND deleted_at IS NULL
			  ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := make([]*domain.Bookmark, 0)
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Title, &b.TargetURL, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}

	return bookmarks, nil
}

// Get returns a live bookmark by id, scoped to its owner.
func (r *Repository) Get(ctx context.Context, ownerID, id string) (*domain.Bookmark, error) {
	query := `SELECT id, owner_id, title, target_url, created_at
			  FROM bookmarks
			  WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`

	var b domain.Bookmark
	err := r.db.QueryRowContext(ctx, query, id, ownerID).
		Scan(&b.ID, &b.OwnerID, &b.Title, &b.TargetURL, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	return &b, nil
}

// Delete soft-deletes a bookmark, scoped to its owner. Returns ErrNotFound
// when the id does not exist, belongs to another owner, or is already
// deleted; callers decide whether that matters (delete is idempotent at the
// API surface).
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	query := `UPDATE bookmarks SET deleted_at = ?
			  WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, r.now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// PurgeDeleted permanently removes rows soft-deleted before the cutoff.
// Returns the number of rows purged.
func (r *Repository) PurgeDeleted(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM bookmarks WHERE deleted_at IS NOT NULL AND deleted_at < ?`

	res, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge deleted bookmarks: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check purge result: %w", err)
	}

	return int(n), nil
}

// Ping reports database liveness for readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
