package belt

import (
	"slices"
	"strings"
)

// Ranked is any record that can be ordered on the belt ladder.
type Ranked interface {
	BeltRank() Rank
	StripeCount() int
	SortName() string
}

// CompareByRankDescending orders higher ranks first, then more stripes, then
// names ascending (case-sensitive). It returns -1, 0 or 1 and is meant for
// stable sorts such as slices.SortStableFunc.
func CompareByRankDescending[T Ranked](a, b T) int {
	if ra, rb := a.BeltRank(), b.BeltRank(); ra != rb {
		if ra > rb {
			return -1
		}
		return 1
	}
	if sa, sb := a.StripeCount(), b.StripeCount(); sa != sb {
		if sa > sb {
			return -1
		}
		return 1
	}
	return strings.Compare(a.SortName(), b.SortName())
}

// SortByRank validates every rank and then stable-sorts items in place with
// CompareByRankDescending. On an invalid rank the slice is left untouched.
func SortByRank[T Ranked](items []T) error {
	for _, it := range items {
		if _, err := it.BeltRank().Index(); err != nil {
			return err
		}
	}
	slices.SortStableFunc(items, CompareByRankDescending[T])
	return nil
}
