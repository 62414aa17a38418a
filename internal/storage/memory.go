package storage

import (
	"context"
	"sync"
	"time"

	"translingo/internal/models"
)

// MemoryStore keeps the history in process memory. It never fails.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []*models.Translation
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, in models.NewTranslation) (*models.Translation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := newRecord(s.nextID, in, s.now().UTC())
	s.nextID++
	s.records = append(s.records, rec)
	out := *rec
	return &out, nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]*models.Translation, error) {
	limit = normalizeLimit(limit)
	s.mu.RLock()
	snapshot := make([]*models.Translation, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		snapshot = append(snapshot, &cp)
	}
	s.mu.RUnlock()

	sortRecent(snapshot)
	if len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}
	return snapshot, nil
}

func (s *MemoryStore) Close() error { return nil }
