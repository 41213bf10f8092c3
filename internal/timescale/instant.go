package timescale

import (
	"fmt"
	"math"
)

const (
	secondsPerDay = 86400.0

	// DaysPerCentury is the length of a Julian century.
	DaysPerCentury = 36525.0

	// J2000JD is the Julian date of the J2000.0 epoch, 2000-01-01 12:00.
	J2000JD = 2451545.0

	// MJDOffset is the Julian date of MJD zero.
	MJDOffset = 2400000.5
)

// Instant is a point in time expressed as a two-part Julian date in a
// specific scale. Whole is an integral Julian day number and the fraction
// lies in [0, 1), so the day boundary falls at noon.
//
// UTC instants use the quasi-JD convention: on a day ending in a leap second
// the fraction advances by 1/86401 per second, which makes 23:59:60
// representable.
type Instant struct {
	scale Scale
	whole float64
	frac  float64
}

// New builds an instant from any two-part Julian date split. The parts are
// renormalized so that Whole is integral and the fraction is in [0, 1).
func New(whole, frac float64, scale Scale) (Instant, error) {
	if !scale.Valid() {
		return Instant{}, fmt.Errorf("new instant: scale %d: %w", int(scale), ErrInvalidTimeScale)
	}
	return normalize(whole, frac, scale), nil
}

// J2000 returns the J2000.0 epoch in the given scale.
func J2000(scale Scale) Instant {
	return Instant{scale: scale, whole: J2000JD}
}

// FromMJD builds an instant from a modified Julian date.
func FromMJD(mjd float64, scale Scale) (Instant, error) {
	return New(MJDOffset, mjd, scale)
}

func normalize(whole, frac float64, scale Scale) Instant {
	w := math.Floor(whole)
	f := (whole - w) + frac
	carry := math.Floor(f)
	w += carry
	f -= carry
	if f >= 1 {
		w++
		f = 0
	}
	return Instant{scale: scale, whole: w, frac: f}
}

// fromMidnight builds an instant from an MJD day number and a fraction of
// the day counted from 0h.
func fromMidnight(mjd int, fd float64, scale Scale) Instant {
	return normalize(float64(mjd)+2400000, 0.5+fd, scale)
}

// midnight splits the instant into an MJD day number and the fraction of
// that day elapsed since 0h.
func (i Instant) midnight() (int, float64) {
	mjd := i.whole - 2400001
	fd := i.frac + 0.5
	if fd >= 1 {
		fd--
		mjd++
	}
	return int(mjd), fd
}

// Scale returns the instant's time scale.
func (i Instant) Scale() Scale { return i.scale }

// Whole returns the integral Julian day number.
func (i Instant) Whole() float64 { return i.whole }

// Fraction returns the day fraction in [0, 1), counted from noon.
func (i Instant) Fraction() float64 { return i.frac }

// DayFraction is an alias for Fraction matching the Earth rotation formula's
// vocabulary.
func (i Instant) DayFraction() float64 { return i.frac }

// JD returns the Julian date collapsed into one float. Precision is limited
// to about 20 microseconds.
func (i Instant) JD() float64 { return i.whole + i.frac }

// MJD returns the modified Julian date.
func (i Instant) MJD() float64 {
	return (i.whole - 2400001) + (i.frac + 0.5)
}

// IsZero reports whether i is the zero Instant.
func (i Instant) IsZero() bool { return i.scale == 0 }

// Add returns the instant shifted by days, keeping the scale.
func (i Instant) Add(days float64) Instant {
	whole := math.Trunc(days)
	return normalize(i.whole+whole, i.frac+(days-whole), i.scale)
}

// AddSeconds shifts the instant by seconds of its own scale. For UTC this is
// a quasi-JD shift; convert to TAI first to step across a leap second in SI
// seconds.
func (i Instant) AddSeconds(seconds float64) Instant {
	return i.Add(seconds / secondsPerDay)
}

// Sub returns i - j in days. Both instants must share a scale.
func (i Instant) Sub(j Instant) (float64, error) {
	if i.scale != j.scale || !i.scale.Valid() {
		return 0, fmt.Errorf("subtract %s from %s: %w", j.scale, i.scale, ErrInvalidTimeScale)
	}
	return (i.whole - j.whole) + (i.frac - j.frac), nil
}

// Compare returns -1, 0 or +1 as i is before, equal to or after j.
func (i Instant) Compare(j Instant) (int, error) {
	if i.scale != j.scale || !i.scale.Valid() {
		return 0, fmt.Errorf("compare %s with %s: %w", i.scale, j.scale, ErrInvalidTimeScale)
	}
	switch {
	case i.whole < j.whole, i.whole == j.whole && i.frac < j.frac:
		return -1, nil
	case i.whole == j.whole && i.frac == j.frac:
		return 0, nil
	default:
		return 1, nil
	}
}

// Equal reports whether i and j are bit-for-bit the same instant.
func (i Instant) Equal(j Instant) bool {
	return i.scale == j.scale && i.whole == j.whole && i.frac == j.frac
}

// Centuries returns Julian centuries since J2000.0 in the instant's own
// scale.
func (i Instant) Centuries() float64 {
	return ((i.whole - J2000JD) + i.frac) / DaysPerCentury
}

// TTCenturies returns Julian centuries of TT since J2000.0.
func TTCenturies(i Instant) (float64, error) {
	if i.scale != TT {
		return 0, fmt.Errorf("centuries of %s instant: %w", i.scale, ErrInvalidTimeScale)
	}
	return i.Centuries(), nil
}

// String formats the instant as an ISO-like calendar timestamp.
func (i Instant) String() string {
	if !i.scale.Valid() {
		return "invalid instant"
	}
	return i.Calendar().String() + " " + i.scale.String()
}
