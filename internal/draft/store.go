// Package draft implements the two-tier attempt-draft protocol: a local
// write-through cache, a remote persisted copy, last-write-wins
// reconciliation by timestamp, and a debounced saver that keeps the remote
// tier current without hammering it.
package draft

import (
	"context"
	"sync"
	"time"

	"lyricclash/internal/models"
)

// Key identifies one draft in either tier
type Key struct {
	PracticeKind string
	AssignmentID int64
}

// Store is one persistence tier for attempt drafts. Load returns nil, nil
// when no draft exists.
type Store interface {
	Load(ctx context.Context, key Key) (*models.AttemptDraft, error)
	Save(ctx context.Context, key Key, draft *models.AttemptDraft) error
	Delete(ctx context.Context, key Key) error
}

// MemStore is the in-process local tier. It deep-copies on both sides so
// callers and the cache never share a draft.
type MemStore struct {
	mu     sync.Mutex
	drafts map[Key]*models.AttemptDraft
}

// NewMemStore creates an empty in-memory draft store
func NewMemStore() *MemStore {
	return &MemStore{drafts: make(map[Key]*models.AttemptDraft)}
}

func (s *MemStore) Load(ctx context.Context, key Key) (*models.AttemptDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[key].Clone(), nil
}

func (s *MemStore) Save(ctx context.Context, key Key, draft *models.AttemptDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = draft.Clone()
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

// PruneOlderThan drops cached drafts last touched before the cutoff and
// returns how many were removed. Run periodically so abandoned attempts do
// not pin memory.
func (s *MemStore) PruneOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for key, draft := range s.drafts {
		if draft.UpdatedAt.Before(cutoff) {
			delete(s.drafts, key)
			pruned++
		}
	}
	return pruned
}
