package domain

import "time"

// Bookmark is a single saved link owned by one user.
// Records are immutable once created: edits in this system are
// modeled as delete + recreate.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, assigned server-side
	// at creation (ULID, lexicographically time-ordered).
	ID string `json:"id"`

	// OwnerID identifies the user who owns the record. Set at
	// creation, never changed. No record is ever visible outside
	// its owner's scope.
	OwnerID string `json:"owner_id"`

	// ─────────────────────────────
	// User-supplied content
	// ─────────────────────────────

	// Title is the free-text label shown in the list.
	Title string `json:"title"`

	// TargetURL is the saved link.
	// Example: https://go.dev/blog/
	TargetURL string `json:"target_url"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is assigned server-side at creation.
	CreatedAt time.Time `json:"created_at"`

	// DeletedAt marks the bookmark as soft-deleted. Soft-deleted rows
	// are invisible to every query and purged by the janitor later.
	DeletedAt *time.Time `json:"-"`
}
