package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("member not found")
	ErrInvalidLimit = errors.New("invalid roster limit")
	ErrInvalidGrade = errors.New("invalid grade")
	ErrNotHigher    = errors.New("promotion does not outrank current grade")
	ErrMissingID    = errors.New("missing id")
)
