// Package geodesy converts between geodetic latitude, longitude and height
// and Earth-fixed Cartesian coordinates on a reference ellipsoid.
package geodesy

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/litescript/terraframe/internal/astro"
)

// ErrUnknownEllipsoid is returned by ParseEllipsoid for unrecognised names.
var ErrUnknownEllipsoid = errors.New("unknown ellipsoid")

// WGS 84 physical constants shared by every model.
const (
	// GravitationalParameter is GM in m³/s².
	GravitationalParameter = 3.9860050e14
	// MeanAngularVelocity is the Earth's rotation rate in rad/s.
	MeanAngularVelocity = 7.292115e-5
)

// PrecessingAngularVelocity returns the Earth's angular velocity in rad/s
// relative to a precessing frame, t Julian centuries of UT1 from J2000.0
// (NIMA TR8350.2 eq. 3-10).
func PrecessingAngularVelocity(t float64) float64 {
	return 7.2921158553e-5 + 4.3e-15*t
}

// Ellipsoid selects an Earth figure.
type Ellipsoid int

const (
	// WGS84 is the World Geodetic System 1984 ellipsoid.
	WGS84 Ellipsoid = iota
	// Spherical is a sphere with the WGS 84 mean radius.
	Spherical
)

const (
	wgs84A        = 6378137.0
	wgs84F        = 1 / 298.257223563
	meanRadius    = 6371008.7714
	halleySteps   = 2
	defaultFigure = WGS84
)

func (e Ellipsoid) String() string {
	switch e {
	case WGS84:
		return "wgs84"
	case Spherical:
		return "spherical"
	default:
		return "unknown"
	}
}

// ParseEllipsoid parses "wgs84" or "spherical". An empty name selects WGS 84.
func ParseEllipsoid(s string) (Ellipsoid, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return defaultFigure, nil
	case "wgs84", "wgs-84":
		return WGS84, nil
	case "spherical", "sphere":
		return Spherical, nil
	default:
		return 0, fmt.Errorf("parse %q: %w", s, ErrUnknownEllipsoid)
	}
}

// SemiMajorAxis returns the equatorial radius in metres.
func (e Ellipsoid) SemiMajorAxis() float64 {
	if e == Spherical {
		return meanRadius
	}
	return wgs84A
}

// Flattening returns (a-b)/a.
func (e Ellipsoid) Flattening() float64 {
	if e == Spherical {
		return 0
	}
	return wgs84F
}

// Eccentricity returns the first eccentricity.
func (e Ellipsoid) Eccentricity() float64 {
	f := e.Flattening()
	return math.Sqrt(2*f - f*f)
}

// ToCartesian converts geodetic latitude and longitude in radians and
// height above the ellipsoid in metres to Earth-fixed coordinates in metres.
func (e Ellipsoid) ToCartesian(lat, lon, alt float64) astro.Vec3 {
	a := e.SemiMajorAxis()
	e2 := e.Eccentricity() * e.Eccentricity()
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	n := a / math.Sqrt(1-e2*sinLat*sinLat)
	return astro.Vec3{
		X: (n + alt) * cosLat * cosLon,
		Y: (n + alt) * cosLat * sinLon,
		Z: ((1-e2)*n + alt) * sinLat,
	}
}

// FromCartesian converts Earth-fixed coordinates in metres to geodetic
// latitude and longitude in radians and height in metres, using
// Fukushima's Halley-accelerated iteration (J. Geodesy 79, 2006). Two steps
// reach microarcsecond accuracy. Points on the polar axis, the origin
// included, are reported at latitude ±90° and longitude 0.
func (e Ellipsoid) FromCartesian(v astro.Vec3) (lat, lon, alt float64) {
	a := e.SemiMajorAxis()
	e2 := e.Eccentricity() * e.Eccentricity()
	ec := math.Sqrt(1 - e2)

	pl := math.Hypot(v.X, v.Y)
	absZ := math.Abs(v.Z)
	if pl == 0 {
		// On the polar axis the iteration degenerates.
		return math.Copysign(math.Pi/2, v.Z), 0, absZ - a*ec
	}
	p := pl / a
	zb := ec * absZ / a

	s, c := zb, ec*p
	for i := 0; i < halleySteps; i++ {
		ab := math.Sqrt(s*s + c*c)
		b := 1.5 * e2 * s * c * c * ((p*s-zb*c)*ab - e2*s*c)
		f := p*ab*ab*ab - e2*c*c*c
		d := zb*ab*ab*ab + e2*s*s*s
		s, c = d*f-b*s, f*f-b*c
	}

	cc := ec * c
	lon = math.Atan2(v.Y, v.X)
	lat = math.Copysign(math.Atan2(s, cc), v.Z)
	alt = (pl*cc + absZ*s - a*math.Sqrt(ec*ec*s*s+cc*cc)) / math.Sqrt(cc*cc+s*s)
	return lat, lon, alt
}
