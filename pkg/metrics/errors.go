package metrics

import "errors"

// Use rejects a nil manager with ErrNilManager.
var (
	ErrNilManager = errors.New("metrics manager is nil")
)
