// Package astro provides the rotation primitives of the IAU 2006/2000A
// celestial to terrestrial reduction: vectors and 3x3 matrices, elementary
// rotations, the Earth rotation angle and the intermediate frame matrices.
package astro

import (
	"fmt"
	"math"

	"github.com/litescript/terraframe/internal/timescale"
)

// Angle units.
const (
	ArcsecToRad      = 4.848136811095359935899141e-6
	MilliArcsecToRad = ArcsecToRad / 1e3
	MicroArcsecToRad = ArcsecToRad / 1e6
	TwoPi            = 2 * math.Pi
)

// NormalizeAngle reduces a to [0, 2π).
func NormalizeAngle(a float64) float64 {
	w := math.Mod(a, TwoPi)
	if w < 0 {
		w += TwoPi
	}
	if w >= TwoPi {
		w = 0
	}
	return w
}

// EarthRotationAngle returns the IAU 2000 Earth rotation angle in [0, 2π)
// for a UT1 instant.
func EarthRotationAngle(ut1 timescale.Instant) (float64, error) {
	if ut1.Scale() != timescale.UT1 {
		return 0, fmt.Errorf("earth rotation angle of %s instant: %w", ut1.Scale(), timescale.ErrInvalidTimeScale)
	}
	return eraParts(ut1.Whole(), ut1.Fraction()), nil
}

// eraParts evaluates the angle from an integral day number and a day
// fraction, keeping the fraction separate so no precision is lost.
func eraParts(whole, frac float64) float64 {
	t := frac + (whole - timescale.J2000JD)
	f := math.Mod(frac, 1) + math.Mod(whole, 1)
	return NormalizeAngle(TwoPi * (f + 0.7790572732640 + 0.00273781191135448*t))
}

// SPrime returns the TIO locator s' in radians at t Julian centuries of TT.
func SPrime(t float64) float64 {
	return -47e-6 * t * ArcsecToRad
}

// GreenwichMeanSiderealTime returns IAU 2006 GMST in [0, 2π), consistent
// with the Earth rotation angle and the IAU 2006 precession.
func GreenwichMeanSiderealTime(ut1, tt timescale.Instant) (float64, error) {
	era, err := EarthRotationAngle(ut1)
	if err != nil {
		return 0, err
	}
	t, err := timescale.TTCenturies(tt)
	if err != nil {
		return 0, err
	}
	return NormalizeAngle(era + (0.014506+
		(4612.156534+
			(1.3915817+
				(-0.00000044+
					(-0.000029956+
						(-0.0000000368)*t)*t)*t)*t)*t)*ArcsecToRad), nil
}

// LocalRotationAngle adds an east longitude in radians to an angle measured
// from Greenwich and reduces the result to [0, 2π).
func LocalRotationAngle(greenwich, lon float64) float64 {
	return NormalizeAngle(greenwich + lon)
}
