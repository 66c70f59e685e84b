package schedule

import "errors"

// Sentinel error kinds for schedule parsing and validation.
var (
	ErrInvalidDay   = errors.New("invalid day of week")
	ErrInvalidClock = errors.New("invalid clock time")
	ErrInvalidSlot  = errors.New("invalid class slot")
)
