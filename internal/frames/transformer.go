// Package frames composes the time-dependent rotation between the
// Geocentric Celestial Reference System (GCRS) and the International
// Terrestrial Reference System (ITRS) using the IAU 2006/2000A CIO-based
// reduction.
//
// A Transformer combines a CIP series model with optional Earth
// orientation data and caches the matrices for the most recent instant.
package frames

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/litescript/terraframe/internal/astro"
	"github.com/litescript/terraframe/internal/eop"
	"github.com/litescript/terraframe/internal/logging"
	"github.com/litescript/terraframe/internal/metrics"
	"github.com/litescript/terraframe/internal/series"
	"github.com/litescript/terraframe/internal/timescale"
)

// ErrNoModel is returned by New when no CIP model is given.
var ErrNoModel = errors.New("no CIP series model")

// Config selects the optional corrections in the reduction.
type Config struct {
	// ApplyPolarMotion includes xp, yp and the TIO locator s'. When false
	// the ITRS to TIRS matrix is the identity.
	ApplyPolarMotion bool

	// ApplyNutationCorrections adds the tabulated celestial pole offsets
	// dX, dY to the modelled CIP coordinates.
	ApplyNutationCorrections bool
}

// DefaultConfig enables every correction.
func DefaultConfig() Config {
	return Config{ApplyPolarMotion: true, ApplyNutationCorrections: true}
}

// Matrices is the full transformation context for one instant.
type Matrices struct {
	astro.Chain

	TT     timescale.Instant
	UT1    timescale.Instant
	Config Config

	// CIP holds X and Y after any dX, dY correction and the CIO locator s.
	CIP series.Coordinates
	ERA float64
	EOP eop.Params
	// SPrime is the TIO locator, zero when polar motion is off.
	SPrime float64
	// Clamped reports that the instant lies outside the orientation table
	// and boundary values were used.
	Clamped bool
}

// Stats counts cache activity for one Transformer.
type Stats struct {
	Hits, Misses int
	Clamps       int
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithConfig sets the corrections to apply.
func WithConfig(cfg Config) Option {
	return func(t *Transformer) {
		t.cfg = cfg
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.log = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(enabled bool) Option {
	return func(t *Transformer) {
		t.metrics = enabled
	}
}

// Transformer computes GCRS/ITRS matrices. It holds an interpolation cursor
// and a single-instant cache and is not safe for concurrent use; create one
// per goroutine over a shared CIP and table.
type Transformer struct {
	cip    *series.CIP
	cursor *eop.Cursor

	cfg     Config
	log     *logging.Logger
	metrics bool

	cached    Matrices
	cachedKey [2]uint64
	hasCached bool

	warnedClamp bool
	stats       Stats
}

// New creates a Transformer. A nil table means no Earth orientation data:
// UT1 is taken equal to UTC and polar motion and pole offsets are zero.
func New(cip *series.CIP, table *eop.Table, opts ...Option) (*Transformer, error) {
	if cip == nil {
		return nil, fmt.Errorf("new transformer: %w", ErrNoModel)
	}

	t := &Transformer{
		cip: cip,
		cfg: DefaultConfig(),
		log: logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if table != nil {
		t.cursor = table.Cursor()
		first, last := table.Range()
		t.log.Debug("orientation data: %d samples, MJD %.1f to %.1f", table.Len(), first, last)
	} else {
		t.log.Warn("no orientation data: UT1 = UTC, polar motion and pole offsets are zero")
	}

	if t.metrics {
		if table != nil {
			metrics.SetDatasetSize("eop", table.Len())
		}
		metrics.SetDatasetSize("x", cip.X.NumTerms())
		metrics.SetDatasetSize("y", cip.Y.NumTerms())
		metrics.SetDatasetSize("sxy2", cip.SXY2.NumTerms())
	}
	return t, nil
}

// Config returns the corrections applied by t.
func (t *Transformer) Config() Config { return t.cfg }

// Stats returns cache and clamp counters.
func (t *Transformer) Stats() Stats { return t.stats }

// Matrices returns the transformation context at i, which may be a TT,
// TAI or UTC instant. A UT1 instant is rejected with
// timescale.ErrInvalidTimeScale. Instants outside the orientation table
// succeed with clamped values and Matrices.Clamped set.
func (t *Transformer) Matrices(i timescale.Instant) (Matrices, error) {
	tt, err := timescale.ToTT(i)
	if err != nil {
		return Matrices{}, fmt.Errorf("matrices: %w", err)
	}

	key := [2]uint64{math.Float64bits(tt.Whole()), math.Float64bits(tt.Fraction())}
	if t.hasCached && key == t.cachedKey {
		t.stats.Hits++
		if t.metrics {
			metrics.ObserveCacheHit()
		}
		return t.cached, nil
	}

	t.stats.Misses++
	if t.metrics {
		metrics.ObserveCacheMiss()
	}

	start := time.Now()
	m, err := t.compute(tt)
	if err != nil {
		return Matrices{}, err
	}
	if t.metrics {
		metrics.ObserveCompute(time.Since(start))
	}

	t.cached, t.cachedKey, t.hasCached = m, key, true
	return m, nil
}

func (t *Transformer) compute(tt timescale.Instant) (Matrices, error) {
	m := Matrices{TT: tt, Config: t.cfg}
	tc := tt.Centuries()

	var err error
	m.UT1, m.EOP, m.Clamped, err = t.orientation(tt)
	if err != nil {
		return Matrices{}, err
	}

	m.CIP = t.cip.Evaluate(tc)
	if t.cfg.ApplyNutationCorrections {
		m.CIP.X += m.EOP.DX
		m.CIP.Y += m.EOP.DY
	}

	m.ERA, err = astro.EarthRotationAngle(m.UT1)
	if err != nil {
		return Matrices{}, fmt.Errorf("earth rotation angle: %w", err)
	}

	pm := astro.Identity()
	if t.cfg.ApplyPolarMotion {
		m.SPrime = astro.SPrime(tc)
		pm = astro.PolarMotionMatrix(m.EOP.Xp, m.EOP.Yp, m.SPrime)
	}

	m.Chain = astro.ComposeChain(
		astro.CIRSToGCRS(m.CIP.X, m.CIP.Y, m.CIP.S),
		astro.EarthRotationMatrix(m.ERA),
		pm,
	)
	return m, nil
}

// orientation returns UT1 and the interpolated parameters at tt.
func (t *Transformer) orientation(tt timescale.Instant) (timescale.Instant, eop.Params, bool, error) {
	if t.cursor == nil {
		utc, err := timescale.ToUTC(tt)
		if err != nil {
			return timescale.Instant{}, eop.Params{}, false, err
		}
		ut1, err := timescale.UTCToUT1(utc, 0)
		return ut1, eop.Params{}, false, err
	}

	ut1, p, err := t.cursor.UT1(tt)
	var rangeErr *eop.RangeError
	switch {
	case errors.As(err, &rangeErr):
		t.stats.Clamps++
		if t.metrics {
			metrics.ObserveClamp()
		}
		if !t.warnedClamp {
			t.warnedClamp = true
			t.log.Warn("%v", rangeErr)
		}
		return ut1, p, true, nil
	case err != nil:
		return timescale.Instant{}, eop.Params{}, false, fmt.Errorf("orientation: %w", err)
	}
	return ut1, p, false, nil
}

// ToITRSFromGCRS returns the matrix that maps GCRS coordinates to ITRS at i.
func (t *Transformer) ToITRSFromGCRS(i timescale.Instant) (astro.Matrix, error) {
	m, err := t.Matrices(i)
	if err != nil {
		return astro.Matrix{}, err
	}
	return m.GCRSToITRS(), nil
}

// ToGCRSFromITRS returns the matrix that maps ITRS coordinates to GCRS at i.
func (t *Transformer) ToGCRSFromITRS(i timescale.Instant) (astro.Matrix, error) {
	m, err := t.Matrices(i)
	if err != nil {
		return astro.Matrix{}, err
	}
	return m.ITRSToGCRS, nil
}

// Rotate transforms v at i in the given direction.
func (t *Transformer) Rotate(i timescale.Instant, v astro.Vec3, dir Direction) (astro.Vec3, error) {
	var (
		r   astro.Matrix
		err error
	)
	switch dir {
	case GCRSToITRS:
		r, err = t.ToITRSFromGCRS(i)
	case ITRSToGCRS:
		r, err = t.ToGCRSFromITRS(i)
	default:
		return astro.Vec3{}, fmt.Errorf("rotate: %w", ErrUnknownDirection)
	}
	if err != nil {
		return astro.Vec3{}, err
	}
	return r.MulVec(v), nil
}
