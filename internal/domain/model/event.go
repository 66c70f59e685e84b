// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/jitsu/internal/domain/belt"
)

// EventKind distinguishes the asynchronous writes flowing through the queue.
type EventKind string

const (
	EventCheckIn   EventKind = "checkin"
	EventPromotion EventKind = "promotion"
)

// Event is a write submitted by clients and applied by workers.
type Event struct {
	EventID  string    // unique id for idempotency
	Kind     EventKind // checkin or promotion
	MemberID string    // subject member
	TeamID   string    // member's team, copied onto history records
	TS       time.Time // submission timestamp

	// Check-in fields.
	SessionID  string
	Status     AttendanceStatus
	Visitor    bool
	VerifiedBy string

	// Promotion fields.
	Grade belt.Grade
	Notes string
}
