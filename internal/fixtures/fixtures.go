// Package fixtures loads the academy seed data.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/jitsu/internal/domain/model"
	"github.com/okian/jitsu/internal/domain/schedule"
)

//go:embed default.yaml
var defaultSeed []byte

// Sentinel kinds for fixture errors.
var (
	ErrInvalidFixture = errors.New("invalid fixture")
	ErrReadFixture    = errors.New("read fixture failed")
)

// Seed is the full data set a service starts from.
type Seed struct {
	Teams      []model.Team             `yaml:"teams"`
	Members    []model.Member           `yaml:"members"`
	History    []model.GraduationRecord `yaml:"history"`
	Schedule   []model.ScheduleItem     `yaml:"schedule"`
	Sessions   []model.Session          `yaml:"sessions"`
	Attendance []model.Attendance       `yaml:"attendance"`
	Feed       []model.FeedPost         `yaml:"feed"`
	Chat       []model.ChatMessage      `yaml:"chat"`
}

// Default returns the embedded seed.
func Default() (*Seed, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file, or the embedded seed when path is empty.
func Load(path string) (*Seed, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFixture, err)
	}
	return Parse(raw)
}

// Parse decodes YAML strictly; unknown keys are errors.
func Parse(raw []byte) (*Seed, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var s Seed
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	return &s, nil
}

// Validate checks referential integrity and that every grade and class slot
// is well formed as of now.
func (s *Seed) Validate(now time.Time) error {
	teams := make(map[string]bool, len(s.Teams))
	for _, t := range s.Teams {
		if t.ID == "" || teams[t.ID] {
			return fmt.Errorf("%w: team id %q missing or duplicated", ErrInvalidFixture, t.ID)
		}
		teams[t.ID] = true
	}

	members := make(map[string]bool, len(s.Members))
	for _, m := range s.Members {
		if m.ID == "" || members[m.ID] {
			return fmt.Errorf("%w: member id %q missing or duplicated", ErrInvalidFixture, m.ID)
		}
		if !teams[m.TeamID] {
			return fmt.Errorf("%w: member %s references unknown team %q", ErrInvalidFixture, m.ID, m.TeamID)
		}
		if err := m.Grade.Validate(now); err != nil {
			return fmt.Errorf("%w: member %s: %w", ErrInvalidFixture, m.ID, err)
		}
		members[m.ID] = true
	}

	for _, h := range s.History {
		if h.ID == "" {
			return fmt.Errorf("%w: history record for %q has no id", ErrInvalidFixture, h.MemberID)
		}
		if !members[h.MemberID] {
			return fmt.Errorf("%w: history %s references unknown member %q", ErrInvalidFixture, h.ID, h.MemberID)
		}
	}

	for _, item := range s.Schedule {
		if !teams[item.TeamID] {
			return fmt.Errorf("%w: class %s references unknown team %q", ErrInvalidFixture, item.ID, item.TeamID)
		}
		if _, err := schedule.Validate(item); err != nil {
			return fmt.Errorf("%w: class %s: %w", ErrInvalidFixture, item.ID, err)
		}
	}

	sessions := make(map[string]bool, len(s.Sessions))
	for _, ss := range s.Sessions {
		if ss.ID == "" || sessions[ss.ID] {
			return fmt.Errorf("%w: session id %q missing or duplicated", ErrInvalidFixture, ss.ID)
		}
		if !teams[ss.TeamID] {
			return fmt.Errorf("%w: session %s references unknown team %q", ErrInvalidFixture, ss.ID, ss.TeamID)
		}
		sessions[ss.ID] = true
	}

	for _, a := range s.Attendance {
		if a.ID == "" {
			return fmt.Errorf("%w: attendance record for %q has no id", ErrInvalidFixture, a.MemberID)
		}
		if !sessions[a.SessionID] || !members[a.MemberID] {
			return fmt.Errorf("%w: attendance %s references unknown session or member", ErrInvalidFixture, a.ID)
		}
		if _, err := model.ParseAttendanceStatus(string(a.Status)); err != nil {
			return fmt.Errorf("%w: attendance %s: %w", ErrInvalidFixture, a.ID, err)
		}
	}
	return nil
}
