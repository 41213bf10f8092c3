package frames

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/terraframe/internal/astro"
	"github.com/litescript/terraframe/internal/eop"
	"github.com/litescript/terraframe/internal/logging"
	"github.com/litescript/terraframe/internal/series"
	"github.com/litescript/terraframe/internal/timescale"
)

// fullModel returns the embedded IAU 2006/2000A model, skipping when the
// IERS tables were not compiled in.
func fullModel(t *testing.T) *series.CIP {
	t.Helper()
	cip, err := series.Default()
	if errors.Is(err, series.ErrNoTables) {
		t.Skip("IERS X and Y tables not embedded, see internal/series/iers/README.md")
	}
	require.NoError(t, err)
	return cip
}

// anyModel prefers the full model and falls back to the secular one for
// checks that do not depend on the nutation terms.
func anyModel() *series.CIP {
	if cip, err := series.Default(); err == nil {
		return cip
	}
	return series.Secular()
}

// syntheticTable spans MJD first..last with UT1-TAI drifting linearly, so
// UT1-UTC jumps by one second at each leap second.
func syntheticTable(t *testing.T, first, last int) *eop.Table {
	t.Helper()
	var samples []eop.Sample
	for mjd := first; mjd <= last; mjd++ {
		d := float64(mjd - first)
		samples = append(samples, eop.Sample{
			MJD:         float64(mjd),
			Xp:          (100 + 0.5*d) * astro.MilliArcsecToRad,
			Yp:          (350 - 0.3*d) * astro.MilliArcsecToRad,
			UT1MinusUTC: -36.4 - 0.0005*d + timescale.TAIMinusUTC(mjd),
			DX:          (0.2 + 0.01*d) * astro.MilliArcsecToRad,
			DY:          (-0.1 + 0.01*d) * astro.MilliArcsecToRad,
		})
	}
	table, err := eop.NewTable(samples)
	require.NoError(t, err)
	return table
}

func mustInstant(t *testing.T, whole, frac float64, scale timescale.Scale) timescale.Instant {
	t.Helper()
	i, err := timescale.New(whole, frac, scale)
	require.NoError(t, err)
	return i
}

func TestNewRequiresModel(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestMatricesAreOrthonormalAndInverse(t *testing.T) {
	table := syntheticTable(t, 57739, 57770)
	tr, err := New(series.Secular(), table)
	require.NoError(t, err)

	start := mustInstant(t, 2457740.5, 0, timescale.TT)
	for day := 0.0; day < 29; day += 1.37 {
		m, err := tr.Matrices(start.Add(day))
		require.NoError(t, err)
		assert.False(t, m.Clamped)

		for name, r := range map[string]astro.Matrix{
			"CIRSToGCRS": m.CIRSToGCRS,
			"TIRSToCIRS": m.TIRSToCIRS,
			"ITRSToTIRS": m.ITRSToTIRS,
			"ITRSToGCRS": m.ITRSToGCRS,
		} {
			assert.Less(t, r.OrthonormalityError(), 1e-12, "%s at day %g", name, day)
		}
		roundTrip := m.ITRSToGCRS.Mul(m.GCRSToITRS())
		assert.Less(t, roundTrip.MaxAbsDiff(astro.Identity()), 1e-12)
	}
}

func TestMatricesComposeStages(t *testing.T) {
	table := syntheticTable(t, 57740, 57770)
	cip := series.Secular()
	tr, err := New(cip, table)
	require.NoError(t, err)

	tt := mustInstant(t, 2457755, 0.3, timescale.TT)
	m, err := tr.Matrices(tt)
	require.NoError(t, err)

	ut1, p, err := table.Cursor().UT1(tt)
	require.NoError(t, err)
	assert.True(t, ut1.Equal(m.UT1))
	assert.Equal(t, p, m.EOP)

	tc := tt.Centuries()
	coords := cip.Evaluate(tc)
	assert.Equal(t, coords.X+p.DX, m.CIP.X)
	assert.Equal(t, coords.Y+p.DY, m.CIP.Y)
	assert.Equal(t, coords.S, m.CIP.S)

	era, err := astro.EarthRotationAngle(ut1)
	require.NoError(t, err)
	assert.Equal(t, era, m.ERA)
	assert.Equal(t, astro.SPrime(tc), m.SPrime)

	want := astro.CIRSToGCRS(m.CIP.X, m.CIP.Y, m.CIP.S).
		Mul(astro.EarthRotationMatrix(era)).
		Mul(astro.PolarMotionMatrix(p.Xp, p.Yp, m.SPrime))
	assert.Less(t, m.ITRSToGCRS.MaxAbsDiff(want), 1e-15)
}

func TestMatricesCache(t *testing.T) {
	tr, err := New(series.Secular(), syntheticTable(t, 57740, 57770))
	require.NoError(t, err)

	a := mustInstant(t, 2457750, 0.25, timescale.TT)
	b := a.AddSeconds(1)

	first, err := tr.Matrices(a)
	require.NoError(t, err)
	again, err := tr.Matrices(a)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, Stats{Hits: 1, Misses: 1}, tr.Stats())

	_, err = tr.Matrices(b)
	require.NoError(t, err)
	_, err = tr.Matrices(a)
	require.NoError(t, err)
	assert.Equal(t, Stats{Hits: 1, Misses: 3}, tr.Stats())
}

func TestMatricesAcceptsEquivalentScales(t *testing.T) {
	tr, err := New(series.Secular(), syntheticTable(t, 57740, 57770))
	require.NoError(t, err)

	utc, err := timescale.FromCalendar(2016, 12, 20, 6, 0, 0, timescale.UTC)
	require.NoError(t, err)
	tai, err := timescale.UTCToTAI(utc)
	require.NoError(t, err)
	tt, err := timescale.TAIToTT(tai)
	require.NoError(t, err)

	fromTT, err := tr.Matrices(tt)
	require.NoError(t, err)
	for _, i := range []timescale.Instant{utc, tai} {
		m, err := tr.Matrices(i)
		require.NoError(t, err)
		assert.Less(t, m.ITRSToGCRS.MaxAbsDiff(fromTT.ITRSToGCRS), 1e-12, i.Scale().String())
	}
}

func TestMatricesRejectsUT1(t *testing.T) {
	tr, err := New(series.Secular(), nil)
	require.NoError(t, err)

	_, err = tr.Matrices(mustInstant(t, 2451545, 0, timescale.UT1))
	assert.ErrorIs(t, err, timescale.ErrInvalidTimeScale)
	_, err = tr.ToITRSFromGCRS(mustInstant(t, 2451545, 0, timescale.UT1))
	assert.ErrorIs(t, err, timescale.ErrInvalidTimeScale)
}

func TestWithoutOrientationData(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithOutput(logging.LevelInfo, &buf)
	tr, err := New(series.Secular(), nil, WithLogger(log))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no orientation data")

	tt := mustInstant(t, 2457000, 0.5, timescale.TT)
	m, err := tr.Matrices(tt)
	require.NoError(t, err)
	assert.Equal(t, eop.Params{}, m.EOP)

	utc, err := timescale.ToUTC(tt)
	require.NoError(t, err)
	d, err := m.UT1.Sub(mustInstant(t, utc.Whole(), utc.Fraction(), timescale.UT1))
	require.NoError(t, err)
	assert.InDelta(t, 0, d*86400, 1e-6)

	// Polar motion is zero, so only s' separates ITRS from TIRS.
	assert.Less(t, m.ITRSToTIRS.MaxAbsDiff(astro.R3(-m.SPrime)), 1e-18)
}

func TestConfigFlagsAreIndependent(t *testing.T) {
	table := syntheticTable(t, 57740, 57770)
	tt := mustInstant(t, 2457755, 0.6, timescale.TT)

	build := func(cfg Config) Matrices {
		tr, err := New(series.Secular(), table, WithConfig(cfg))
		require.NoError(t, err)
		assert.Equal(t, cfg, tr.Config())
		m, err := tr.Matrices(tt)
		require.NoError(t, err)
		return m
	}

	all := build(DefaultConfig())
	noPM := build(Config{ApplyNutationCorrections: true})
	noNut := build(Config{ApplyPolarMotion: true})

	assert.Equal(t, astro.Identity(), noPM.ITRSToTIRS)
	assert.Equal(t, 0.0, noPM.SPrime)
	assert.Equal(t, all.CIRSToGCRS, noPM.CIRSToGCRS)
	assert.Equal(t, all.TIRSToCIRS, noPM.TIRSToCIRS)

	assert.Equal(t, all.ITRSToTIRS, noNut.ITRSToTIRS)
	assert.Equal(t, all.TIRSToCIRS, noNut.TIRSToCIRS)
	assert.InDelta(t, all.CIP.X-all.EOP.DX, noNut.CIP.X, 1e-17)
	assert.InDelta(t, all.CIP.Y-all.EOP.DY, noNut.CIP.Y, 1e-17)
	assert.Greater(t, all.CIRSToGCRS.MaxAbsDiff(noNut.CIRSToGCRS), 0.0)
}

func TestOutOfRangeIsClampedAndWarnedOnce(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithOutput(logging.LevelWarn, &buf)
	table := syntheticTable(t, 57740, 57770)
	tr, err := New(series.Secular(), table, WithLogger(log), WithMetrics(true))
	require.NoError(t, err)

	late := mustInstant(t, 2458000.5, 0, timescale.TT)
	for k := 0; k < 3; k++ {
		m, err := tr.Matrices(late.Add(float64(k)))
		require.NoError(t, err)
		assert.True(t, m.Clamped)

		last := table.Samples()[table.Len()-1]
		assert.Equal(t, last.Xp, m.EOP.Xp)
		assert.Equal(t, last.Yp, m.EOP.Yp)
	}

	assert.Equal(t, 3, tr.Stats().Clamps)
	assert.Equal(t, 1, strings.Count(buf.String(), "[WARN]"))
	assert.Contains(t, buf.String(), "outside table range")
}

func TestEarthRotationContinuousAcrossLeapSecond(t *testing.T) {
	tr, err := New(series.Secular(), syntheticTable(t, 57745, 57760))
	require.NoError(t, err)

	type stamp struct {
		y, mo, d, h, mi int
		sec             float64
	}
	stamps := []stamp{
		{2016, 12, 31, 23, 59, 59},
		{2016, 12, 31, 23, 59, 59.5},
		{2016, 12, 31, 23, 59, 60},
		{2016, 12, 31, 23, 59, 60.5},
		{2017, 1, 1, 0, 0, 0},
		{2017, 1, 1, 0, 0, 0.5},
	}

	var prev float64
	for k, s := range stamps {
		utc, err := timescale.FromCalendar(s.y, s.mo, s.d, s.h, s.mi, s.sec, timescale.UTC)
		require.NoError(t, err)
		m, err := tr.Matrices(utc)
		require.NoError(t, err)

		if k > 0 {
			step := astro.NormalizeAngle(m.ERA - prev)
			// Half an SI second of Earth rotation.
			assert.InDelta(t, 0.5*7.292115e-5, step, 1e-9, "step %d", k)
		}
		prev = m.ERA
	}
}

func TestRotate(t *testing.T) {
	tr, err := New(series.Secular(), syntheticTable(t, 57740, 57770))
	require.NoError(t, err)
	tt := mustInstant(t, 2457760, 0.1, timescale.TT)

	site := astro.Vec3{X: 4.0e6, Y: 3.0e5, Z: 4.9e6}
	inertial, err := tr.Rotate(tt, site, ITRSToGCRS)
	require.NoError(t, err)
	back, err := tr.Rotate(tt, inertial, GCRSToITRS)
	require.NoError(t, err)

	assert.InDelta(t, site.Norm(), inertial.Norm(), 1e-6)
	assert.InDelta(t, site.X, back.X, 1e-6)
	assert.InDelta(t, site.Y, back.Y, 1e-6)
	assert.InDelta(t, site.Z, back.Z, 1e-6)

	_, err = tr.Rotate(tt, site, Direction(9))
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"gcrs-to-itrs", GCRSToITRS},
		{"C2T", GCRSToITRS},
		{"itrs-to-gcrs", ITRSToGCRS},
		{" t2c ", ITRSToGCRS},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotEqual(t, "unknown", got.String())
	}

	_, err := ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrUnknownDirection)

	for _, d := range []Direction{GCRSToITRS, ITRSToGCRS} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	assert.Equal(t, "unknown", Direction(0).String())
}

// TestCelestialToTerrestrialReference reproduces the SOFA c2t06a test case.
func TestCelestialToTerrestrialReference(t *testing.T) {
	cip := fullModel(t)

	// TT-UT1 = 0.000777 d with TAI-UTC = 33 s.
	dut1 := timescale.TTMinusTAI + 33 - 0.000777*86400
	var samples []eop.Sample
	for mjd := 54190.0; mjd <= 54200; mjd++ {
		samples = append(samples, eop.Sample{
			MJD:         mjd,
			Xp:          2.55060238e-7,
			Yp:          1.860359247e-6,
			UT1MinusUTC: dut1,
		})
	}
	table, err := eop.NewTable(samples)
	require.NoError(t, err)

	tr, err := New(cip, table)
	require.NoError(t, err)
	rc2t, err := tr.ToITRSFromGCRS(mustInstant(t, 2400000.5, 54195.500776, timescale.TT))
	require.NoError(t, err)

	want := astro.Matrix{
		{-0.1810332128305897282, 0.9834769806938592296, 0.6555551248057665829e-4},
		{-0.9834768134136214897, -0.1810332203649130832, 0.5749800844905594110e-3},
		{0.5773474028619264494e-3, 0.3961816546911624260e-4, 0.9999998325501746670},
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, want[r][c], rc2t[r][c], 1e-11, "element [%d][%d]", r, c)
		}
	}
	assert.False(t, math.IsNaN(rc2t[0][0]))
}

// constantTable holds fixed polar motion and UT1-TAI = -36.4 s, with no
// pole offsets.
func constantTable(t *testing.T, first, last int) *eop.Table {
	t.Helper()
	var samples []eop.Sample
	for mjd := first; mjd <= last; mjd++ {
		samples = append(samples, eop.Sample{
			MJD:         float64(mjd),
			Xp:          2.55060238e-7,
			Yp:          1.860359247e-6,
			UT1MinusUTC: -36.4 + timescale.TAIMinusUTC(mjd),
		})
	}
	table, err := eop.NewTable(samples)
	require.NoError(t, err)
	return table
}

// expectedGCRSToITRS assembles the reduction from its primitives, given TT
// and UT1 as independent two-part dates.
func expectedGCRSToITRS(t *testing.T, cip *series.CIP, tt, ut1 timescale.Instant, xp, yp float64, polarMotion bool) astro.Matrix {
	t.Helper()
	tc, err := timescale.TTCenturies(tt)
	require.NoError(t, err)
	era, err := astro.EarthRotationAngle(ut1)
	require.NoError(t, err)

	c := cip.Evaluate(tc)
	pm := astro.Identity()
	if polarMotion {
		pm = astro.PolarMotionMatrix(xp, yp, astro.SPrime(tc))
	}
	return astro.ComposeChain(astro.CIRSToGCRS(c.X, c.Y, c.S), astro.EarthRotationMatrix(era), pm).GCRSToITRS()
}

func TestTransformAcrossLeapSecond(t *testing.T) {
	cip := anyModel()
	tr, err := New(cip, constantTable(t, 57745, 57760))
	require.NoError(t, err)

	// 2016-12-31T23:59:60 UTC is 2017-01-01T00:00:36 TAI.
	leap, err := timescale.FromCalendar(2016, 12, 31, 23, 59, 60, timescale.UTC)
	require.NoError(t, err)

	for _, offset := range []float64{0, 1.0, 1.5, 2.0, 3.0, 4.0} {
		utc := leap.AddSeconds(offset)
		if offset >= 1 {
			// After the inserted second, UTC days are 86400 s long again.
			utc, err = timescale.FromCalendar(2017, 1, 1, 0, 0, offset-1, timescale.UTC)
			require.NoError(t, err)
		}

		tt := mustInstant(t, 2457754, 0.5+(36+timescale.TTMinusTAI+offset)/86400, timescale.TT)
		ut1 := mustInstant(t, 2457754, 0.5+(36-36.4+offset)/86400, timescale.UT1)
		want := expectedGCRSToITRS(t, cip, tt, ut1, 2.55060238e-7, 1.860359247e-6, true)

		got, err := tr.ToITRSFromGCRS(utc)
		require.NoError(t, err)
		assert.Less(t, got.MaxAbsDiff(want), 1e-10, "%.1f s past the leap second", offset)

		m, err := tr.Matrices(utc)
		require.NoError(t, err)
		assert.False(t, m.Clamped)
		d, err := m.UT1.Sub(ut1)
		require.NoError(t, err)
		assert.InDelta(t, 0, d*86400, 1e-6, "%.1f s past the leap second", offset)
	}
}

func TestCorrectionsDisabledMatchesBareReduction(t *testing.T) {
	cip := anyModel()
	table := syntheticTable(t, 57740, 57770)
	tr, err := New(cip, table, WithConfig(Config{}))
	require.NoError(t, err)

	for _, frac := range []float64{0.05, 0.3, 0.77} {
		tt := mustInstant(t, 2457755, frac, timescale.TT)
		m, err := tr.Matrices(tt)
		require.NoError(t, err)
		require.NotZero(t, m.EOP.Xp)
		require.NotZero(t, m.EOP.DX)

		want := expectedGCRSToITRS(t, cip, tt, m.UT1, 0, 0, false)
		assert.Less(t, m.GCRSToITRS().MaxAbsDiff(want), 1e-10, "frac %g", frac)

		// The pole offsets never reach X and Y.
		c := cip.Evaluate(tt.Centuries())
		assert.Equal(t, c.X, m.CIP.X)
		assert.Equal(t, c.Y, m.CIP.Y)
	}
}
