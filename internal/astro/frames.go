package astro

import "math"

// Naming convention: a function or matrix called AToB maps coordinates
// expressed in frame A into frame B. Going the other way is the transpose.

// PolarMotionMatrix returns the ITRS to TIRS matrix
// R3(-s')·R2(xp)·R1(yp). xp, yp and sp are in radians.
func PolarMotionMatrix(xp, yp, sp float64) Matrix {
	return R3(-sp).Mul(R2(xp)).Mul(R1(yp))
}

// EarthRotationMatrix returns the TIRS to CIRS matrix R3(-era).
func EarthRotationMatrix(era float64) Matrix {
	return R3(-era)
}

// CIRSToGCRS returns the bias-precession-nutation matrix that maps CIRS to
// GCRS, given the CIP coordinates X, Y and the CIO locator s in radians.
func CIRSToGCRS(x, y, s float64) Matrix {
	return GCRSToCIRS(x, y, s).Transpose()
}

// GCRSToCIRS returns R3(-(E+s))·R2(d)·R3(E), which moves the pole to the
// CIP at (X, Y) and the origin to the CIO.
func GCRSToCIRS(x, y, s float64) Matrix {
	r2 := x*x + y*y
	e := 0.0
	if r2 > 0 {
		e = math.Atan2(y, x)
	}
	d := math.Atan(math.Sqrt(r2 / (1 - r2)))
	return R3(-(e + s)).Mul(R2(d)).Mul(R3(e))
}

// Chain holds the three stage matrices of the ITRS to GCRS reduction and
// their product.
type Chain struct {
	CIRSToGCRS Matrix
	TIRSToCIRS Matrix
	ITRSToTIRS Matrix
	ITRSToGCRS Matrix
}

// ComposeChain multiplies the stages in their fixed order:
// GCRS←ITRS = (GCRS←CIRS)·(CIRS←TIRS)·(TIRS←ITRS).
func ComposeChain(cirsToGCRS, tirsToCIRS, itrsToTIRS Matrix) Chain {
	return Chain{
		CIRSToGCRS: cirsToGCRS,
		TIRSToCIRS: tirsToCIRS,
		ITRSToTIRS: itrsToTIRS,
		ITRSToGCRS: cirsToGCRS.Mul(tirsToCIRS).Mul(itrsToTIRS),
	}
}

// GCRSToITRS returns the inverse of the composed chain.
func (c Chain) GCRSToITRS() Matrix {
	return c.ITRSToGCRS.Transpose()
}
