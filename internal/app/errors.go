package service

import "errors"

// Sentinel kinds returned by Service. Callers map them to transport codes.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrBackpressure    = errors.New("backpressure")
)
