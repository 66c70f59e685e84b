package config

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	// ErrUnknownTimezone is returned when Timezone is not an IANA zone name.
	ErrUnknownTimezone = errors.New("unknown timezone")
)
