// Package interp provides piecewise-linear interpolation over sorted samples.
package interp

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidSamples is returned when sample slices cannot be interpolated.
var ErrInvalidSamples = errors.New("invalid interpolation samples")

// Linear interpolates y(x) between tabulated samples and clamps to the end
// samples outside their range.
//
// Each Linear remembers the last bracket it used so that sequential nearby
// queries skip the binary search. The cache never changes results. A Linear
// is not safe for concurrent use; give each caller its own.
type Linear struct {
	x, y []float64

	// hi is the upper index of the cached bracket (x[hi-1], x[hi]].
	hi int
}

// NewLinear builds an interpolator over copies of x and y. x must be
// strictly increasing and both slices must have the same, non-zero length.
func NewLinear(x, y []float64) (*Linear, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("no samples: %w", ErrInvalidSamples)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d x values, %d y values: %w", len(x), len(y), ErrInvalidSamples)
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("x not strictly increasing at index %d: %w", i, ErrInvalidSamples)
		}
	}

	l := &Linear{
		x: append([]float64(nil), x...),
		y: append([]float64(nil), y...),
	}
	return l, nil
}

// Len returns the number of samples.
func (l *Linear) Len() int { return len(l.x) }

// Domain returns the first and last x values.
func (l *Linear) Domain() (first, last float64) {
	return l.x[0], l.x[len(l.x)-1]
}

// At returns the interpolated value at v.
func (l *Linear) At(v float64) float64 {
	n := len(l.x)
	if v <= l.x[0] {
		return l.y[0]
	}
	if v >= l.x[n-1] {
		return l.y[n-1]
	}

	hi := l.hi
	if hi < 1 || hi >= n || !(l.x[hi-1] < v && v <= l.x[hi]) {
		hi = sort.SearchFloat64s(l.x, v)
		l.hi = hi
	}

	x0, x1 := l.x[hi-1], l.x[hi]
	y0, y1 := l.y[hi-1], l.y[hi]
	if v == x1 {
		return y1
	}
	return y0 + (y1-y0)*(v-x0)/(x1-x0)
}

// AtEach evaluates every query in vs and returns the results in order.
func (l *Linear) AtEach(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = l.At(v)
	}
	return out
}
