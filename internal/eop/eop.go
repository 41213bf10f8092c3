// Package eop loads tabulated Earth orientation parameters and interpolates
// polar motion, UT1-UTC and celestial pole offsets from them.
package eop

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/terraframe/internal/interp"
	"github.com/litescript/terraframe/internal/timescale"
)

var (
	// ErrMalformed is returned when a dataset cannot be parsed or is not
	// ordered by date.
	ErrMalformed = errors.New("malformed orientation dataset")

	// ErrOutOfRange marks a lookup outside the tabulated dates. The values
	// returned alongside it are clamped to the nearest sample and usable.
	ErrOutOfRange = errors.New("orientation data out of range")
)

// RangeError reports a lookup outside the table's MJD range.
type RangeError struct {
	MJD         float64
	First, Last float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("MJD %.5f outside table range [%.2f, %.2f]: clamped to boundary", e.MJD, e.First, e.Last)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// Sample is one tabulated day. Angles are in radians, UT1MinusUTC in
// seconds.
type Sample struct {
	MJD         float64
	Xp, Yp      float64
	UT1MinusUTC float64
	DX, DY      float64
}

// Params are interpolated orientation values for one instant.
type Params struct {
	Xp, Yp      float64
	UT1MinusUTC float64
	DX, DY      float64
}

// Table is an immutable, date-ordered set of samples. It is safe to share
// between goroutines; each goroutine should interpolate through its own
// Cursor.
type Table struct {
	samples []Sample

	mjd    []float64
	xp, yp []float64
	dx, dy []float64

	// ut1TAI holds UT1-TAI, which unlike UT1-UTC has no leap-second steps.
	ut1TAI []float64
}

// NewTable validates samples and builds a table from a copy of them.
func NewTable(samples []Sample) (*Table, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples: %w", ErrMalformed)
	}

	t := &Table{
		samples: append([]Sample(nil), samples...),
		mjd:     make([]float64, len(samples)),
		xp:      make([]float64, len(samples)),
		yp:      make([]float64, len(samples)),
		dx:      make([]float64, len(samples)),
		dy:      make([]float64, len(samples)),
		ut1TAI:  make([]float64, len(samples)),
	}
	for i, s := range samples {
		if i > 0 && !(s.MJD > samples[i-1].MJD) {
			return nil, fmt.Errorf("sample %d: MJD %.2f does not follow %.2f: %w", i, s.MJD, samples[i-1].MJD, ErrMalformed)
		}
		if math.IsNaN(s.Xp) || math.IsNaN(s.Yp) || math.IsNaN(s.UT1MinusUTC) {
			return nil, fmt.Errorf("sample %d at MJD %.2f: NaN value: %w", i, s.MJD, ErrMalformed)
		}
		t.mjd[i] = s.MJD
		t.xp[i] = s.Xp
		t.yp[i] = s.Yp
		t.dx[i] = s.DX
		t.dy[i] = s.DY
		t.ut1TAI[i] = s.UT1MinusUTC - timescale.TAIMinusUTC(int(math.Floor(s.MJD)))
	}
	return t, nil
}

// Len returns the number of samples.
func (t *Table) Len() int { return len(t.samples) }

// Range returns the first and last tabulated MJD.
func (t *Table) Range() (first, last float64) {
	return t.mjd[0], t.mjd[len(t.mjd)-1]
}

// Samples returns a copy of the table's samples.
func (t *Table) Samples() []Sample {
	return append([]Sample(nil), t.samples...)
}

// Cursor returns a new interpolation cursor over the table.
func (t *Table) Cursor() *Cursor {
	must := func(y []float64) *interp.Linear {
		l, err := interp.NewLinear(t.mjd, y)
		if err != nil {
			// NewTable already enforced the interpolator's preconditions.
			panic(err)
		}
		return l
	}
	return &Cursor{
		table:  t,
		xp:     must(t.xp),
		yp:     must(t.yp),
		dx:     must(t.dx),
		dy:     must(t.dy),
		ut1TAI: must(t.ut1TAI),
	}
}

// Cursor interpolates a Table. It caches the last bracket per quantity and
// is not safe for concurrent use.
type Cursor struct {
	table  *Table
	xp, yp *interp.Linear
	dx, dy *interp.Linear
	ut1TAI *interp.Linear
}

// Table returns the table the cursor reads.
func (c *Cursor) Table() *Table { return c.table }

// Lookup interpolates all parameters at a UTC modified Julian date. Outside
// the table the boundary sample is used and the returned error wraps
// ErrOutOfRange; the Params are valid in both cases.
func (c *Cursor) Lookup(mjd float64) (Params, error) {
	p := Params{
		Xp:          c.xp.At(mjd),
		Yp:          c.yp.At(mjd),
		DX:          c.dx.At(mjd),
		DY:          c.dy.At(mjd),
		UT1MinusUTC: c.ut1TAI.At(mjd) + timescale.TAIMinusUTC(int(math.Floor(mjd))),
	}

	first, last := c.table.Range()
	if mjd < first || mjd > last {
		return p, &RangeError{MJD: mjd, First: first, Last: last}
	}
	return p, nil
}

// UT1 converts a UTC, TAI or TT instant to UT1. The table is indexed by the
// UTC date. An out-of-range error is returned together with a valid,
// clamped result.
func (c *Cursor) UT1(i timescale.Instant) (timescale.Instant, Params, error) {
	utc, err := timescale.ToUTC(i)
	if err != nil {
		return timescale.Instant{}, Params{}, err
	}
	p, rangeErr := c.Lookup(utc.MJD())
	ut1, err := timescale.UTCToUT1(utc, p.UT1MinusUTC)
	if err != nil {
		return timescale.Instant{}, Params{}, err
	}
	return ut1, p, rangeErr
}
