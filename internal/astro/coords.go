package astro

import "math"

// SkyCoord is a direction given as right ascension and declination in the
// GCRS and, once observed, azimuth and elevation at a site. Angles are in
// degrees.
type SkyCoord struct {
	RAdeg  float64
	DecDeg float64

	// AzDeg is measured from north through east (0=N, 90=E).
	AzDeg float64
	ElDeg float64
}

// Observer is a site on the Earth in geodetic latitude and longitude
// (degrees, east positive).
type Observer struct {
	LatDeg float64
	LonDeg float64
	Name   string
}

// DirectionFromRADec returns the unit vector for a right ascension and
// declination in degrees.
func DirectionFromRADec(raDeg, decDeg float64) Vec3 {
	sinRA, cosRA := math.Sincos(degToRad(raDeg))
	sinDec, cosDec := math.Sincos(degToRad(decDeg))
	return Vec3{X: cosDec * cosRA, Y: cosDec * sinRA, Z: sinDec}
}

// RADecFromDirection returns right ascension in [0, 360) and declination of
// a vector, in degrees.
func RADecFromDirection(v Vec3) (raDeg, decDeg float64) {
	ra := NormalizeAngle(math.Atan2(v.Y, v.X))
	dec := math.Atan2(v.Z, math.Hypot(v.X, v.Y))
	return radToDeg(ra), radToDeg(dec)
}

// ITRSToHorizon returns the matrix that maps ITRS directions to the local
// east, north, up frame of the observer.
func (o Observer) ITRSToHorizon() Matrix {
	sinLat, cosLat := math.Sincos(degToRad(o.LatDeg))
	sinLon, cosLon := math.Sincos(degToRad(o.LonDeg))
	return Matrix{
		{-sinLon, cosLon, 0},
		{-sinLat * cosLon, -sinLat * sinLon, cosLat},
		{cosLat * cosLon, cosLat * sinLon, sinLat},
	}
}

// EquatorialToHorizontal fills in azimuth and elevation of eq for an
// observer, given the GCRS to ITRS matrix at the time of observation. The
// direction is geocentric: diurnal parallax, aberration and refraction are
// not applied.
func EquatorialToHorizontal(eq SkyCoord, obs Observer, gcrsToITRS Matrix) SkyCoord {
	enu := obs.ITRSToHorizon().Mul(gcrsToITRS).MulVec(DirectionFromRADec(eq.RAdeg, eq.DecDeg))

	out := eq
	out.AzDeg = radToDeg(NormalizeAngle(math.Atan2(enu.X, enu.Y)))
	out.ElDeg = radToDeg(math.Atan2(enu.Z, math.Hypot(enu.X, enu.Y)))
	return out
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
