// Package roster groups, filters and orders team members for display.
package roster

import (
	"slices"
	"time"

	"github.com/okian/jitsu/internal/domain/belt"
	"github.com/okian/jitsu/internal/domain/model"
)

// SectionKind separates the instructor block from belt blocks.
type SectionKind string

const (
	SectionInstructors SectionKind = "INSTRUCTOR"
	SectionBelt        SectionKind = "BELT"
)

// Section is one titled block of the team roster.
type Section struct {
	Title   string         `json:"title"`
	Kind    SectionKind    `json:"type"`
	Rank    *belt.Rank     `json:"belt,omitempty"`
	Members []model.Member `json:"data"`
}

// Sections splits members into an instructor block followed by one block per
// belt, highest belt first. Members inside each block are ordered with
// belt.CompareByRankDescending.
func Sections(members []model.Member) ([]Section, error) {
	sorted := slices.Clone(members)
	if err := belt.SortByRank(sorted); err != nil {
		return nil, err
	}

	var instructors []model.Member
	byRank := make(map[belt.Rank][]model.Member)
	var order []belt.Rank
	for _, m := range sorted {
		if m.Role.Teaches() {
			instructors = append(instructors, m)
			continue
		}
		r := m.BeltRank()
		if _, seen := byRank[r]; !seen {
			order = append(order, r)
		}
		byRank[r] = append(byRank[r], m)
	}

	out := make([]Section, 0, len(order)+1)
	if len(instructors) > 0 {
		out = append(out, Section{Title: "Instructors", Kind: SectionInstructors, Members: instructors})
	}
	// sorted is already rank-descending, so order is too.
	for _, r := range order {
		rank := r
		out = append(out, Section{
			Title:   r.DisplayName() + " Belt",
			Kind:    SectionBelt,
			Rank:    &rank,
			Members: byRank[r],
		})
	}
	return out, nil
}

// PromotionHint summarizes where a member stands on the ladder.
type PromotionHint struct {
	Current       belt.Rank  `json:"current"`
	Next          *belt.Rank `json:"next,omitempty"`
	MonthsInGrade int        `json:"months_in_grade"`
	StripesToNext int        `json:"stripes_to_next"`
	// StripesComplete is true when every stripe of the current belt is earned.
	StripesComplete bool `json:"stripes_complete"`
}

// Hint computes the promotion hint for a member at time now.
func Hint(m model.Member, now time.Time) (PromotionHint, error) {
	next, ok, err := belt.Next(m.Grade.Rank)
	if err != nil {
		return PromotionHint{}, err
	}
	h := PromotionHint{
		Current:         m.Grade.Rank,
		MonthsInGrade:   belt.MonthsInGrade(m.Grade.AwardedAt, now),
		StripesToNext:   max(belt.MaxStripes-m.Grade.Stripes, 0),
		StripesComplete: m.Grade.Stripes >= belt.MaxStripes,
	}
	if ok {
		h.Next = &next
	}
	return h, nil
}
