package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/okian/jitsu/internal/domain/model"
)

// MemoryHistoryStore is a map-backed HistoryStore.
type MemoryHistoryStore struct {
	mu       sync.RWMutex
	byMember map[string][]model.GraduationRecord
}

// NewHistoryStore returns an empty graduation history.
func NewHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{byMember: make(map[string][]model.GraduationRecord)}
}

// Append implements HistoryStore.Append.
func (s *MemoryHistoryStore) Append(_ context.Context, rec model.GraduationRecord) error {
	if rec.MemberID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	s.byMember[rec.MemberID] = append(s.byMember[rec.MemberID], rec)
	s.mu.Unlock()
	return nil
}

// List implements HistoryStore.List.
func (s *MemoryHistoryStore) List(_ context.Context, memberID string) []model.GraduationRecord {
	s.mu.RLock()
	out := slices.Clone(s.byMember[memberID])
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.GraduationRecord) int {
		return b.PromotedAt.Compare(a.PromotedAt)
	})
	return out
}
