// Package timescale provides a two-part Julian date instant tagged with a
// time scale, plus the UTC, TAI, TT and UT1 conversions needed to drive the
// Earth orientation chain.
package timescale

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTimeScale is returned for unsupported scales and for
	// arithmetic or comparisons between instants of different scales.
	ErrInvalidTimeScale = errors.New("invalid time scale")

	// ErrInvalidCalendar is returned when calendar fields are out of range.
	ErrInvalidCalendar = errors.New("invalid calendar date")
)

// Scale identifies a time scale.
type Scale int

const (
	// UTC is Coordinated Universal Time. Days ending in a leap second are
	// 86401 SI seconds long.
	UTC Scale = iota + 1
	// UT1 is the Earth rotation time scale.
	UT1
	// TAI is International Atomic Time.
	TAI
	// TT is Terrestrial Time, TAI + 32.184 s.
	TT
)

func (s Scale) String() string {
	switch s {
	case UTC:
		return "UTC"
	case UT1:
		return "UT1"
	case TAI:
		return "TAI"
	case TT:
		return "TT"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is a supported scale.
func (s Scale) Valid() bool {
	return s >= UTC && s <= TT
}

// ParseScale parses a scale name, case-insensitively.
func ParseScale(s string) (Scale, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UTC":
		return UTC, nil
	case "UT1":
		return UT1, nil
	case "TAI":
		return TAI, nil
	case "TT", "TDT":
		return TT, nil
	default:
		return 0, fmt.Errorf("parse scale %q: %w", s, ErrInvalidTimeScale)
	}
}
