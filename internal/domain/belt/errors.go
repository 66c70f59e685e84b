package belt

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidRank       = errors.New("invalid belt rank")
	ErrStripesOutOfRange = errors.New("stripe count out of range")
	ErrAwardedInFuture   = errors.New("grade awarded in the future")
)

// InvalidRankError reports a rank value outside the closed belt set.
type InvalidRankError struct {
	// Value is the offending input, either a numeric rank or the raw identifier.
	Value string
}

func (e *InvalidRankError) Error() string {
	return fmt.Sprintf("invalid belt rank %q", e.Value)
}

// Is lets errors.Is(err, ErrInvalidRank) match any InvalidRankError.
func (e *InvalidRankError) Is(target error) bool {
	return target == ErrInvalidRank
}
