package verify

import "errors"

var (
	// ErrChecksFailed is returned when at least one check failed.
	ErrChecksFailed = errors.New("verification failed")
	// ErrUnexpectedStatus is returned for a response code a check did not expect.
	ErrUnexpectedStatus = errors.New("unexpected status")
)
