// Package repository holds the in-memory stores behind the academy service.
package repository

import (
	"context"

	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
)

// Entry is a roster row with its standing.
type Entry struct {
	// Position is the dense standing: members with equal rank and stripes share it.
	Position int `json:"position"`
	// Place is the 1-based index in the full ordering, unique per member.
	Place  int          `json:"place"`
	Member model.Member `json:"member"`
}

// RosterStore keeps members ordered on the belt ladder.
type RosterStore interface {
	// Upsert inserts or replaces a member. The grade must be valid.
	Upsert(ctx context.Context, m model.Member) error

	// Get returns a member with its standing. ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (Entry, error)

	// Position returns the dense standing of a member.
	Position(ctx context.Context, id string) (int, error)

	// Promote replaces the member's grade and returns the previous one.
	// The new grade must validate and outrank the current grade.
	Promote(ctx context.Context, id string, g belt.Grade) (belt.Grade, error)

	// TopN returns the first n members, highest rank first.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Members returns every member in roster order.
	Members(ctx context.Context) []model.Member

	// Count returns the number of members.
	Count(ctx context.Context) int
}

// AttendanceStore keeps check-ins per class session.
type AttendanceStore interface {
	// Record stores a check-in, replacing an older record for the same member
	// and session. Records are ordered by check-in time, then event id; an
	// incoming record older than the stored one is ignored. It reports whether
	// a record was replaced.
	Record(ctx context.Context, a model.Attendance) (bool, error)

	// List returns the session's records ordered by check-in time.
	List(ctx context.Context, sessionID string) []model.Attendance
}

// HistoryStore keeps graduation records.
type HistoryStore interface {
	Append(ctx context.Context, rec model.GraduationRecord) error
	// List returns a member's records, newest first.
	List(ctx context.Context, memberID string) []model.GraduationRecord
}
