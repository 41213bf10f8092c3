package astro

import (
	"math"
	"testing"
)

func assertMatrix(t *testing.T, name string, got, want Matrix, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(got[i][j]-want[i][j]) > tol {
				t.Errorf("%s[%d][%d] = %.19g, want %.19g", name, i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestPolarMotionMatrix(t *testing.T) {
	xp := 2.55060238e-7
	yp := 1.860359247e-6
	sp := -0.1367174580728891460e-10

	// Reference matrix maps TIRS to ITRS, the transpose of ours.
	want := Matrix{
		{0.9999999999999674721, -0.1367174580728846989e-10, 0.2550602379999972345e-6},
		{0.1414624947957029801e-10, 0.9999999999982695317, -0.1860359246998866389e-5},
		{-0.2550602379741215021e-6, 0.1860359247002414021e-5, 0.9999999999982370039},
	}

	got := PolarMotionMatrix(xp, yp, sp)
	assertMatrix(t, "ITRS->TIRS transposed", got.Transpose(), want, 1e-12)

	if e := got.OrthonormalityError(); e > 1e-15 {
		t.Errorf("orthonormality error = %g", e)
	}
}

func TestPolarMotionDisabledIsIdentity(t *testing.T) {
	got := PolarMotionMatrix(0, 0, 0)
	if d := got.MaxAbsDiff(Identity()); d != 0 {
		t.Errorf("PolarMotionMatrix(0,0,0) differs from identity by %g", d)
	}
}

func TestGCRSToCIRS(t *testing.T) {
	x := 0.5791308486706011000e-3
	y := 0.4020579816732961219e-4
	s := -0.1220040848472271978e-7

	want := Matrix{
		{0.9999998323037157138, 0.5581984869168499149e-9, -0.5791308491611282180e-3},
		{-0.2384261642670440317e-7, 0.9999999991917468964, -0.4020579110169668931e-4},
		{0.5791308486706011000e-3, 0.4020579816732961219e-4, 0.9999998314954627590},
	}

	assertMatrix(t, "GCRS->CIRS", GCRSToCIRS(x, y, s), want, 1e-12)
	assertMatrix(t, "CIRS->GCRS", CIRSToGCRS(x, y, s), want.Transpose(), 1e-12)

	// The third row of GCRS->CIRS is the CIP unit vector in GCRS.
	pole := CIRSToGCRS(x, y, s).MulVec(Vec3{0, 0, 1})
	if math.Abs(pole.X-x) > 1e-15 || math.Abs(pole.Y-y) > 1e-15 {
		t.Errorf("CIP direction = %v, want X=%g Y=%g", pole, x, y)
	}
}

func TestGCRSToCIRSAtPole(t *testing.T) {
	got := GCRSToCIRS(0, 0, 0)
	if d := got.MaxAbsDiff(Identity()); d != 0 {
		t.Errorf("GCRSToCIRS(0,0,0) differs from identity by %g", d)
	}
}

func TestEarthRotationMatrix(t *testing.T) {
	era := 1.75283325530307
	got := EarthRotationMatrix(era)
	assertMatrix(t, "TIRS->CIRS", got, R3(era).Transpose(), 0)

	// A terrestrial x axis advances eastward by the rotation angle.
	v := got.MulVec(Vec3{1, 0, 0})
	if math.Abs(v.X-math.Cos(era)) > 1e-15 || math.Abs(v.Y-math.Sin(era)) > 1e-15 {
		t.Errorf("rotated x axis = %v", v)
	}
}

func TestComposeChain(t *testing.T) {
	x := 0.5791308486706011000e-3
	y := 0.4020579816732961219e-4
	s := -0.1220040848472271978e-7
	era := 1.75283325530307
	xp := 2.55060238e-7
	yp := 1.860359247e-6
	sp := -0.1367174580728891460e-10

	chain := ComposeChain(CIRSToGCRS(x, y, s), EarthRotationMatrix(era), PolarMotionMatrix(xp, yp, sp))

	// Celestial to terrestrial in the reference form: rpom·R3(era)·rc2i.
	rpom := PolarMotionMatrix(xp, yp, sp).Transpose()
	rc2t := rpom.Mul(R3(era)).Mul(GCRSToCIRS(x, y, s))
	assertMatrix(t, "GCRS->ITRS", chain.GCRSToITRS(), rc2t, 1e-15)

	roundTrip := chain.GCRSToITRS().Mul(chain.ITRSToGCRS)
	assertMatrix(t, "round trip", roundTrip, Identity(), 1e-15)

	if e := chain.ITRSToGCRS.OrthonormalityError(); e > 1e-14 {
		t.Errorf("orthonormality error = %g", e)
	}
}

// Stage matrices and expected product from the SOFA c2tcio test case.
func TestComposeChainAgainstReference(t *testing.T) {
	gcrsToCIRS := Matrix{
		{0.9999998323037164738, 0.5581526271714303683e-9, -0.5791308477073443903e-3},
		{-0.2384266227524722273e-7, 0.9999999991917404296, -0.4020594955030704125e-4},
		{0.5791308472168153320e-3, 0.4020595661593994396e-4, 0.9999998314954572365},
	}
	tirsToITRS := Matrix{
		{0.9999999999999674705, -0.1367174580728847031e-10, 0.2550602379999972723e-6},
		{0.1414624947957029721e-10, 0.9999999999982694954, -0.1860359246998866338e-5},
		{-0.2550602379741215275e-6, 0.1860359247002413923e-5, 0.9999999999982369658},
	}
	era := 1.75283325530307

	want := Matrix{
		{-0.1810332128307110439, 0.9834769806938470149, 0.6555535638685466874e-4},
		{-0.9834768134135996657, -0.1810332203649448367, 0.5749801116141106528e-3},
		{0.5773474014081407076e-3, 0.3961832391772658944e-4, 0.9999998325501691969},
	}

	chain := ComposeChain(gcrsToCIRS.Transpose(), EarthRotationMatrix(era), tirsToITRS.Transpose())
	assertMatrix(t, "GCRS->ITRS", chain.GCRSToITRS(), want, 1e-12)
	assertMatrix(t, "ITRS->GCRS", chain.ITRSToGCRS, want.Transpose(), 1e-12)
}
