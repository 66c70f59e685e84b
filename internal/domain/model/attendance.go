package model

import (
	"fmt"
	"strings"
	"time"
)

// AttendanceStatus is a member's standing for one session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceExcused AttendanceStatus = "EXCUSED"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendancePending AttendanceStatus = "PENDING"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{
	AttendancePresent, AttendanceLate, AttendanceExcused, AttendanceAbsent, AttendancePending,
}

// ParseAttendanceStatus resolves a status name case-insensitively.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	want := AttendanceStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range AttendanceStatuses {
		if st == want {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown attendance status %q", s)
}

// Attendance is a check-in record.
type Attendance struct {
	ID          string           `json:"id" yaml:"id"`
	SessionID   string           `json:"session_id" yaml:"session_id"`
	MemberID    string           `json:"member_id" yaml:"member_id"`
	CheckedInAt time.Time        `json:"checked_in_at" yaml:"checked_in_at"`
	Status      AttendanceStatus `json:"status" yaml:"status"`
	VerifiedBy  string           `json:"verified_by,omitempty" yaml:"verified_by"`
	Visitor     bool             `json:"is_visitor,omitempty" yaml:"is_visitor"`
}
