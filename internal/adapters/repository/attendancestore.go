package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/okian/jitsu/internal/domain/model"
)

// MemoryAttendanceStore is a map-backed AttendanceStore.
type MemoryAttendanceStore struct {
	mu        sync.RWMutex
	bySession map[string]map[string]model.Attendance
}

// NewAttendanceStore returns an empty attendance store.
func NewAttendanceStore() *MemoryAttendanceStore {
	return &MemoryAttendanceStore{bySession: make(map[string]map[string]model.Attendance)}
}

// Record implements AttendanceStore.Record. Workers apply events in no fixed
// order, so an incoming record older than the stored one is dropped.
func (s *MemoryAttendanceStore) Record(_ context.Context, a model.Attendance) (bool, error) {
	if a.SessionID == "" || a.MemberID == "" {
		return false, ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.bySession[a.SessionID]
	if !ok {
		members = make(map[string]model.Attendance)
		s.bySession[a.SessionID] = members
	}
	prev, exists := members[a.MemberID]
	if exists && newer(prev, a) {
		return false, nil
	}
	members[a.MemberID] = a
	return exists, nil
}

// newer reports whether a supersedes b: later check-in, then greater event id.
func newer(a, b model.Attendance) bool {
	if c := a.CheckedInAt.Compare(b.CheckedInAt); c != 0 {
		return c > 0
	}
	return a.ID > b.ID
}

// List implements AttendanceStore.List.
func (s *MemoryAttendanceStore) List(_ context.Context, sessionID string) []model.Attendance {
	s.mu.RLock()
	out := make([]model.Attendance, 0, len(s.bySession[sessionID]))
	for _, a := range s.bySession[sessionID] {
		out = append(out, a)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Attendance) int {
		if c := a.CheckedInAt.Compare(b.CheckedInAt); c != 0 {
			return c
		}
		return strings.Compare(a.MemberID, b.MemberID)
	})
	return out
}
