package frames

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDirection is returned for an unrecognised transform direction.
var ErrUnknownDirection = errors.New("unknown direction")

// Direction selects which way a vector is rotated.
type Direction int

const (
	// GCRSToITRS rotates celestial coordinates into the terrestrial frame.
	GCRSToITRS Direction = iota + 1
	// ITRSToGCRS rotates terrestrial coordinates into the celestial frame.
	ITRSToGCRS
)

func (d Direction) String() string {
	switch d {
	case GCRSToITRS:
		return "gcrs-to-itrs"
	case ITRSToGCRS:
		return "itrs-to-gcrs"
	default:
		return "unknown"
	}
}

// ParseDirection accepts "gcrs-to-itrs" or "itrs-to-gcrs" and the short
// forms "c2t" and "t2c".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gcrs-to-itrs", "c2t":
		return GCRSToITRS, nil
	case "itrs-to-gcrs", "t2c":
		return ITRSToGCRS, nil
	default:
		return 0, fmt.Errorf("parse %q: %w", s, ErrUnknownDirection)
	}
}
