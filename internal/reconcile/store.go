package reconcile

import (
	"sync"

	"github.com/pinsync/pinsync/internal/domain"
)

// Store holds the reconciled, duplicate-free, owner-scoped list of bookmarks
// for one connected session. It merges three input streams into one view:
// the initial snapshot, local mutation results, and remotely pushed change
// events. The store performs no I/O; callers validate before applying.
//
// Ordering is by creation time descending at initialization; records applied
// afterwards are prepended, so ordering is insertion-order-into-the-view.
type Store struct {
	mu      sync.Mutex
	ownerID string
	order   []string                    // IDs, newest first
	byID    map[string]*domain.Bookmark // ID -> record
}

// NewStore creates an empty store scoped to one owner. Records carrying a
// different owner id are silently refused by every apply operation.
func NewStore(ownerID string) *Store {
	return &Store{
		ownerID: ownerID,
		byID:    make(map[string]*domain.Bookmark),
	}
}

// Initialize replaces the store contents with the given snapshot, preserving
// its order. Called once per session from the owner-scoped snapshot query.
// An empty snapshot is valid and means "no bookmarks yet".
func (s *Store) Initialize(snapshot []*domain.Bookmark) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = make([]string, 0, len(snapshot))
	s.byID = make(map[string]*domain.Bookmark, len(snapshot))
	for _, b := range snapshot {
		if b.OwnerID != s.ownerID {
			continue
		}
		if _, dup := s.byID[b.ID]; dup {
			continue
		}
		s.order = append(s.order, b.ID)
		s.byID[b.ID] = b
	}
}

// ApplyLocalInsert merges a record returned by a successful creation intent.
// The record is prepended so the view reflects it immediately; a later push
// notification for the same id becomes a no-op.
func (s *Store) ApplyLocalInsert(b *domain.Bookmark) {
	s.apply(b)
}

// ApplyRemoteInsert merges a pushed insert notification. Returns true if the
// record was admitted, false if it was suppressed (redelivery, or this
// session originated the insert and already applied it locally).
func (s *Store) ApplyRemoteInsert(b *domain.Bookmark) bool {
	return s.apply(b)
}

func (s *Store) apply(b *domain.Bookmark) bool {
	if b == nil || b.OwnerID != s.ownerID {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[b.ID]; exists {
		return false
	}
	s.order = append([]string{b.ID}, s.order...)
	s.byID[b.ID] = b
	return true
}

// ApplyLocalDelete removes the record optimistically, before server
// confirmation. Removing an absent id is a silent no-op.
func (s *Store) ApplyLocalDelete(id string) {
	s.remove(id)
}

// ApplyRemoteDelete applies a pushed delete notification. Returns true if a
// record was removed, false if the id was already gone (redelivery, or this
// session already removed it optimistically).
func (s *Store) ApplyRemoteDelete(id string) bool {
	return s.remove(id)
}

func (s *Store) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return false
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Bookmarks returns a copy of the current view in order, newest first.
func (s *Store) Bookmarks() []*domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Bookmark, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Has reports whether a record with the given id is in the view.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byID[id]
	return ok
}

// Len returns the number of records in the view.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}
