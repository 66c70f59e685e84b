package model

import (
	"time"

	"github.com/okian/jitsu/internal/domain/belt"
)

// Role is a member's function within a team.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleAssistant  Role = "ASSISTANT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleHeadCoach  Role = "HEAD_COACH"
)

// Teaches reports whether the role leads classes.
func (r Role) Teaches() bool {
	return r == RoleInstructor || r == RoleHeadCoach
}

// MemberStatus tracks a membership request.
type MemberStatus string

const (
	MemberPending  MemberStatus = "PENDING"
	MemberActive   MemberStatus = "ACTIVE"
	MemberRejected MemberStatus = "REJECTED"
	MemberInactive MemberStatus = "INACTIVE"
)

// Member is a team member with their current belt.
type Member struct {
	ID        string       `json:"id" yaml:"id"`
	TeamID    string       `json:"team_id" yaml:"team_id"`
	Name      string       `json:"name" yaml:"name"`
	AvatarURL string       `json:"avatar_url,omitempty" yaml:"avatar_url"`
	Role      Role         `json:"role" yaml:"role"`
	Status    MemberStatus `json:"status" yaml:"status"`
	Grade     belt.Grade   `json:"grade" yaml:"grade"`
	JoinedAt  time.Time    `json:"joined_at" yaml:"joined_at"`
}

func (m Member) BeltRank() belt.Rank { return m.Grade.Rank }
func (m Member) StripeCount() int    { return m.Grade.Stripes }
func (m Member) SortName() string    { return m.Name }

// GraduationRecord is an entry in a member's promotion history.
type GraduationRecord struct {
	ID         string     `json:"id" yaml:"id"`
	MemberID   string     `json:"member_id" yaml:"member_id"`
	TeamID     string     `json:"team_id" yaml:"team_id"`
	OldGrade   belt.Grade `json:"old_grade" yaml:"old_grade"`
	NewGrade   belt.Grade `json:"new_grade" yaml:"new_grade"`
	PromotedBy string     `json:"promoted_by" yaml:"promoted_by"`
	PromotedAt time.Time  `json:"promoted_at" yaml:"promoted_at"`
	Notes      string     `json:"notes,omitempty" yaml:"notes"`
}
