package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrInvalidTeamCode = errors.New("invalid team code")
	ErrInvalidTeamName = errors.New("invalid team name")
	ErrTeamNotFound    = errors.New("team not found")
)
