package roster

import (
	"slices"

	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
)

// AttendanceRow pairs a member with their status for one session.
type AttendanceRow struct {
	model.Member
	Status     model.AttendanceStatus `json:"attendance_status"`
	Attendance *model.Attendance      `json:"attendance,omitempty"`
}

// Rows joins members with recorded attendance. Members without a record are PENDING.
func Rows(members []model.Member, records []model.Attendance) []AttendanceRow {
	byMember := make(map[string]model.Attendance, len(records))
	for _, a := range records {
		byMember[a.MemberID] = a
	}
	rows := make([]AttendanceRow, 0, len(members))
	for _, m := range members {
		row := AttendanceRow{Member: m, Status: model.AttendancePending}
		if a, ok := byMember[m.ID]; ok {
			a := a
			row.Status = a.Status
			row.Attendance = &a
		}
		rows = append(rows, row)
	}
	return rows
}

// Filter keeps rows with the given status, ordered highest belt first.
// An empty status keeps every row.
func Filter(rows []AttendanceRow, status model.AttendanceStatus) ([]AttendanceRow, error) {
	out := make([]AttendanceRow, 0, len(rows))
	for _, r := range rows {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	if err := belt.SortByRank(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tally counts rows per status.
type Tally struct {
	Total    int `json:"total"`
	Present  int `json:"present"`
	Late     int `json:"late"`
	Excused  int `json:"excused"`
	Absent   int `json:"absent"`
	Pending  int `json:"pending"`
	Capacity int `json:"capacity"`
	// Full is set when PRESENT attendees reach capacity. Late arrivals do not count.
	Full bool `json:"full"`
}

// Count tallies rows against a class capacity. A capacity of zero disables Full.
func Count(rows []AttendanceRow, capacity int) Tally {
	t := Tally{Total: len(rows), Capacity: capacity}
	for _, r := range rows {
		switch r.Status {
		case model.AttendancePresent:
			t.Present++
		case model.AttendanceLate:
			t.Late++
		case model.AttendanceExcused:
			t.Excused++
		case model.AttendanceAbsent:
			t.Absent++
		default:
			t.Pending++
		}
	}
	t.Full = capacity > 0 && t.Present >= capacity
	return t
}

// Statuses returns the distinct statuses present in rows, in display order.
func Statuses(rows []AttendanceRow) []model.AttendanceStatus {
	var out []model.AttendanceStatus
	for _, st := range model.AttendanceStatuses {
		if slices.ContainsFunc(rows, func(r AttendanceRow) bool { return r.Status == st }) {
			out = append(out, st)
		}
	}
	return out
}
