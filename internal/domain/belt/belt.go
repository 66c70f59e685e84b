// Package belt implements the belt ranking engine: a fixed total order over
// belt ranks, successor queries, time-in-grade arithmetic and comparators for
// sorting ranked members.
package belt

import (
	"strconv"
	"strings"
)

// Rank identifies a belt in the promotion ladder. The zero value is White.
type Rank int

// Canonical order, lowest to highest. The ordinal of each constant is its
// position in the ladder.
const (
	White Rank = iota
	GreyWhite
	Grey
	GreyBlack
	YellowWhite
	Yellow
	YellowBlack
	OrangeWhite
	Orange
	OrangeBlack
	GreenWhite
	Green
	GreenBlack
	Blue
	Purple
	Brown
	Black
	RedBlack
	RedWhite
	Red
)

type rankInfo struct {
	id   string
	name string
}

// ladder is indexed by Rank and never mutated.
var ladder = [...]rankInfo{
	White:       {"WHITE", "White"},
	GreyWhite:   {"GREY_WHITE", "Grey White"},
	Grey:        {"GREY", "Grey"},
	GreyBlack:   {"GREY_BLACK", "Grey Black"},
	YellowWhite: {"YELLOW_WHITE", "Yellow White"},
	Yellow:      {"YELLOW", "Yellow"},
	YellowBlack: {"YELLOW_BLACK", "Yellow Black"},
	OrangeWhite: {"ORANGE_WHITE", "Orange White"},
	Orange:      {"ORANGE", "Orange"},
	OrangeBlack: {"ORANGE_BLACK", "Orange Black"},
	GreenWhite:  {"GREEN_WHITE", "Green White"},
	Green:       {"GREEN", "Green"},
	GreenBlack:  {"GREEN_BLACK", "Green Black"},
	Blue:        {"BLUE", "Blue"},
	Purple:      {"PURPLE", "Purple"},
	Brown:       {"BROWN", "Brown"},
	Black:       {"BLACK", "Black"},
	RedBlack:    {"RED_BLACK", "Red Black"},
	RedWhite:    {"RED_WHITE", "Red White"},
	Red:         {"RED", "Red"},
}

var byID = func() map[string]Rank {
	m := make(map[string]Rank, len(ladder))
	for i, info := range ladder {
		m[info.id] = Rank(i)
	}
	return m
}()

// Highest is the top of the ladder.
const Highest = Red

// All returns every rank in canonical order.
func All() []Rank {
	out := make([]Rank, len(ladder))
	for i := range ladder {
		out[i] = Rank(i)
	}
	return out
}

// Valid reports whether r belongs to the closed set.
func (r Rank) Valid() bool {
	return r >= White && int(r) < len(ladder)
}

// Index returns the zero-based position of r in the canonical order.
func (r Rank) Index() (int, error) {
	if !r.Valid() {
		return 0, &InvalidRankError{Value: strconv.Itoa(int(r))}
	}
	return int(r), nil
}

// String returns the canonical identifier, e.g. "GREY_WHITE".
func (r Rank) String() string {
	if !r.Valid() {
		return "Rank(" + strconv.Itoa(int(r)) + ")"
	}
	return ladder[r].id
}

// DisplayName returns the human readable name, e.g. "Grey White".
func (r Rank) DisplayName() string {
	if !r.Valid() {
		return r.String()
	}
	return ladder[r].name
}

// MarshalText implements encoding.TextMarshaler.
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, &InvalidRankError{Value: strconv.Itoa(int(r))}
	}
	return []byte(ladder[r].id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Parse resolves a rank identifier. Matching ignores case and accepts
// spaces or dashes in place of underscores ("grey white", "Grey-White").
func Parse(s string) (Rank, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if r, ok := byID[key]; ok {
		return r, nil
	}
	return 0, &InvalidRankError{Value: s}
}

// Index returns the zero-based position of r in the canonical order.
func Index(r Rank) (int, error) {
	return r.Index()
}

// IsHigher reports whether a ranks strictly above b. Equal ranks are not higher.
func IsHigher(a, b Rank) (bool, error) {
	ia, err := a.Index()
	if err != nil {
		return false, err
	}
	ib, err := b.Index()
	if err != nil {
		return false, err
	}
	return ia > ib, nil
}

// Next returns the immediate successor of r. The boolean is false when r is
// already the highest rank; there is no wraparound.
func Next(r Rank) (Rank, bool, error) {
	i, err := r.Index()
	if err != nil {
		return 0, false, err
	}
	if i == len(ladder)-1 {
		return 0, false, nil
	}
	return Rank(i + 1), true, nil
}
