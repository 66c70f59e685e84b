package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/jitsu/internal/domain/model"
	"github.com/robfig/cron/v3"
)

// Slot is a validated schedule item.
type Slot struct {
	Item  model.ScheduleItem
	Day   Day
	Start Clock
	End   Clock
}

// Validate parses an item's day and clock fields. End must be after start.
func Validate(item model.ScheduleItem) (Slot, error) {
	day, err := ParseDay(item.Day)
	if err != nil {
		return Slot{}, err
	}
	start, err := ParseClock(item.StartTime)
	if err != nil {
		return Slot{}, err
	}
	end, err := ParseClock(item.EndTime)
	if err != nil {
		return Slot{}, err
	}
	if end <= start {
		return Slot{}, fmt.Errorf("%w: %s ends at %s before it starts at %s", ErrInvalidSlot, item.ID, end, start)
	}
	return Slot{Item: item, Day: day, Start: start, End: end}, nil
}

// DayGroup holds the classes of one weekday.
type DayGroup struct {
	Day   Day                  `json:"day"`
	Items []model.ScheduleItem `json:"items"`
}

// GroupByDay buckets items Monday first, each day ordered by start time then title.
// Days without classes are omitted.
func GroupByDay(items []model.ScheduleItem) ([]DayGroup, error) {
	slots := make([]Slot, 0, len(items))
	for _, it := range items {
		s, err := Validate(it)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	slices.SortStableFunc(slots, func(a, b Slot) int {
		if a.Day != b.Day {
			return int(a.Day) - int(b.Day)
		}
		if a.Start != b.Start {
			return int(a.Start) - int(b.Start)
		}
		if a.Item.Title < b.Item.Title {
			return -1
		}
		if a.Item.Title > b.Item.Title {
			return 1
		}
		return 0
	})

	var out []DayGroup
	for _, s := range slots {
		if n := len(out); n == 0 || out[n-1].Day != s.Day {
			out = append(out, DayGroup{Day: s.Day})
		}
		out[len(out)-1].Items = append(out[len(out)-1].Items, s.Item)
	}
	return out, nil
}

// cronSpec builds a weekly standard cron expression for the slot start.
func (s Slot) cronSpec() string {
	return fmt.Sprintf("%d %d * * %d", s.Start.Minute(), s.Start.Hour(), int(s.Day.Weekday()))
}

func (s Slot) schedule() (cron.Schedule, error) {
	sched, err := cron.ParseStandard(s.cronSpec())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSlot, s.Item.ID, err)
	}
	return sched, nil
}

// NextOccurrence returns the first start of the slot strictly after the given
// instant, evaluated in loc.
func NextOccurrence(item model.ScheduleItem, after time.Time, loc *time.Location) (time.Time, error) {
	slot, err := Validate(item)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := slot.schedule()
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after.In(loc)), nil
}

// Sessions expands the slot into dated sessions starting in [from, to).
// Every session is SCHEDULED and taught by the first listed instructor.
func Sessions(item model.ScheduleItem, from, to time.Time, loc *time.Location) ([]model.Session, error) {
	slot, err := Validate(item)
	if err != nil {
		return nil, err
	}
	sched, err := slot.schedule()
	if err != nil {
		return nil, err
	}

	var instructor string
	if len(item.InstructorIDs) > 0 {
		instructor = item.InstructorIDs[0]
	}

	var out []model.Session
	// cron works in whole seconds; step back one to include from itself.
	start := from.In(loc).Truncate(time.Second).Add(-time.Second)
	for t := sched.Next(start); t.Before(to); t = sched.Next(t) {
		if t.Before(from) {
			continue
		}
		date := t.Format(time.DateOnly)
		out = append(out, model.Session{
			ID:           item.ID + "-" + date,
			TeamID:       item.TeamID,
			ScheduleID:   item.ID,
			Date:         date,
			StartTime:    slot.Start.String(),
			EndTime:      slot.End.String(),
			Title:        item.Title,
			InstructorID: instructor,
			Status:       model.SessionScheduled,
		})
	}
	return out, nil
}
