package model

// ClassType is the discipline of a class.
type ClassType string

const (
	ClassGi          ClassType = "Gi"
	ClassNoGi        ClassType = "No-Gi"
	ClassKids        ClassType = "Kids"
	ClassCompetition ClassType = "Competition"
)

// ScheduleItem is a weekly recurring class slot.
type ScheduleItem struct {
	ID            string    `json:"id" yaml:"id"`
	TeamID        string    `json:"team_id" yaml:"team_id"`
	Day           string    `json:"day_of_week" yaml:"day_of_week"`
	StartTime     string    `json:"start_time" yaml:"start_time"` // HH:mm
	EndTime       string    `json:"end_time" yaml:"end_time"`     // HH:mm
	Title         string    `json:"title" yaml:"title"`
	Subtitle      string    `json:"subtitle,omitempty" yaml:"subtitle"`
	InstructorIDs []string  `json:"instructor_ids" yaml:"instructor_ids"`
	Type          ClassType `json:"type" yaml:"type"`
	Tags          []string  `json:"tags" yaml:"tags"`
	Recurring     bool      `json:"is_recurring" yaml:"is_recurring"`
}

// SessionStatus is the lifecycle of a single class occurrence.
type SessionStatus string

const (
	SessionScheduled  SessionStatus = "SCHEDULED"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionCancelled  SessionStatus = "CANCELLED"
)

// Session is one occurrence of a class.
type Session struct {
	ID           string        `json:"id" yaml:"id"`
	TeamID       string        `json:"team_id" yaml:"team_id"`
	ScheduleID   string        `json:"schedule_id,omitempty" yaml:"schedule_id"`
	Date         string        `json:"date" yaml:"date"` // YYYY-MM-DD
	StartTime    string        `json:"start_time" yaml:"start_time"`
	EndTime      string        `json:"end_time" yaml:"end_time"`
	Title        string        `json:"title" yaml:"title"`
	InstructorID string        `json:"instructor_id" yaml:"instructor_id"`
	Status       SessionStatus `json:"status" yaml:"status"`
}
