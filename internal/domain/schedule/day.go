// Package schedule handles weekly recurring classes: day and clock parsing,
// grouping by weekday and expanding slots into dated sessions.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Day is a day of the week, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// Days returns the week in display order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d Day) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	if d < Monday || d > Sunday {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return []byte(dayNames[d]), nil
}

// Weekday converts to time.Weekday.
func (d Day) Weekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// ParseDay accepts MONDAY..SUNDAY, case-insensitive, and three-letter forms.
func ParseDay(s string) (Day, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range dayNames {
		if key == name || (len(key) == 3 && strings.HasPrefix(name, key)) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses "HH:mm" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}
