// Package series evaluates the IAU 2006/2000A polynomial plus Poisson series
// for the celestial intermediate pole coordinates X and Y and the CIO
// locator quantity s+XY/2.
package series

import "math"

const (
	// arcsecToRad converts arcseconds to radians.
	arcsecToRad = 4.848136811095359935899141e-6

	// microArcsecToRad converts microarcseconds to radians.
	microArcsecToRad = arcsecToRad * 1e-6

	// turnArcsec is one full turn in arcseconds.
	turnArcsec = 1296000.0

	twoPi = 2 * math.Pi
)

// NumArguments is the number of fundamental arguments.
const NumArguments = 14

// Indices into Arguments.
const (
	ArgL          = iota // mean anomaly of the Moon
	ArgLPrime            // mean anomaly of the Sun
	ArgF                 // mean argument of latitude of the Moon
	ArgD                 // mean elongation of the Moon from the Sun
	ArgOmega             // mean longitude of the Moon's ascending node
	ArgMercury           // mean longitude of Mercury
	ArgVenus             // mean longitude of Venus
	ArgEarth             // mean longitude of Earth
	ArgMars              // mean longitude of Mars
	ArgJupiter           // mean longitude of Jupiter
	ArgSaturn            // mean longitude of Saturn
	ArgUranus            // mean longitude of Uranus
	ArgNeptune           // mean longitude of Neptune
	ArgPrecession        // general accumulated precession in longitude
)

// Arguments holds the fundamental arguments in radians, in the column order
// of the IERS Conventions tables.
type Arguments [NumArguments]float64

// FundamentalArguments evaluates the IERS Conventions 2003 fundamental
// arguments at t Julian centuries of TT since J2000.0.
func FundamentalArguments(t float64) Arguments {
	var a Arguments

	a[ArgL] = math.Mod(485868.249036+
		t*(1717915923.2178+
			t*(31.8792+
				t*(0.051635+
					t*(-0.00024470)))), turnArcsec) * arcsecToRad

	a[ArgLPrime] = math.Mod(1287104.793048+
		t*(129596581.0481+
			t*(-0.5532+
				t*(0.000136+
					t*(-0.00001149)))), turnArcsec) * arcsecToRad

	a[ArgF] = math.Mod(335779.526232+
		t*(1739527262.8478+
			t*(-12.7512+
				t*(-0.001037+
					t*(0.00000417)))), turnArcsec) * arcsecToRad

	a[ArgD] = math.Mod(1072260.703692+
		t*(1602961601.2090+
			t*(-6.3706+
				t*(0.006593+
					t*(-0.00003169)))), turnArcsec) * arcsecToRad

	a[ArgOmega] = math.Mod(450160.398036+
		t*(-6962890.5431+
			t*(7.4722+
				t*(0.007702+
					t*(-0.00005939)))), turnArcsec) * arcsecToRad

	a[ArgMercury] = math.Mod(4.402608842+2608.7903141574*t, twoPi)
	a[ArgVenus] = math.Mod(3.176146697+1021.3285546211*t, twoPi)
	a[ArgEarth] = math.Mod(1.753470314+628.3075849991*t, twoPi)
	a[ArgMars] = math.Mod(6.203480913+334.0612426700*t, twoPi)
	a[ArgJupiter] = math.Mod(0.599546497+52.9690962641*t, twoPi)
	a[ArgSaturn] = math.Mod(0.874016757+21.3299104960*t, twoPi)
	a[ArgUranus] = math.Mod(5.481293872+7.4781598567*t, twoPi)
	a[ArgNeptune] = math.Mod(5.311886287+3.8133035638*t, twoPi)
	a[ArgPrecession] = (0.024381750 + 0.00000538691*t) * t

	return a
}
