package belt

import (
	"fmt"
	"time"
)

// MaxStripes is the highest stripe (degree) count within a belt.
const MaxStripes = 4

// gradeMonth is the fixed month length used for time in grade. Not calendar aware.
const gradeMonth = 30 * 24 * time.Hour

// Grade is a belt awarded to a member.
type Grade struct {
	Rank      Rank      `json:"rank" yaml:"rank"`
	Stripes   int       `json:"stripes" yaml:"stripes"`
	AwardedAt time.Time `json:"awarded_at" yaml:"awarded_at"`
	AwardedBy string    `json:"awarded_by" yaml:"awarded_by"`
}

// Validate checks the rank, stripe bounds and that the award is not later than now.
func (g Grade) Validate(now time.Time) error {
	if !g.Rank.Valid() {
		return &InvalidRankError{Value: g.Rank.String()}
	}
	if g.Stripes < 0 || g.Stripes > MaxStripes {
		return fmt.Errorf("%w: %d not in 0..%d", ErrStripesOutOfRange, g.Stripes, MaxStripes)
	}
	if g.AwardedAt.After(now) {
		return fmt.Errorf("%w: %s", ErrAwardedInFuture, g.AwardedAt.Format(time.RFC3339))
	}
	return nil
}

// Outranks reports whether g sits above other: higher rank, or same rank with more stripes.
func (g Grade) Outranks(other Grade) bool {
	if g.Rank != other.Rank {
		return g.Rank > other.Rank
	}
	return g.Stripes > other.Stripes
}

// MonthsInGrade returns whole 30-day periods between awardedAt and now.
// Awards later than now yield zero; use Grade.Validate to surface them.
func MonthsInGrade(awardedAt, now time.Time) int {
	d := now.Sub(awardedAt)
	if d < 0 {
		return 0
	}
	return int(d / gradeMonth)
}

// MonthsSince is MonthsInGrade measured against the current time.
func MonthsSince(awardedAt time.Time) int {
	return MonthsInGrade(awardedAt, time.Now())
}
