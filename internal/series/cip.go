package series

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// ErrNoTables is returned by Default when the X and Y tables were not
// compiled into the package.
var ErrNoTables = errors.New("iers series tables not embedded")

//go:embed iers
var embedded embed.FS

// Coordinates are the CIP position and CIO locator, in radians.
type Coordinates struct {
	X, Y float64
	SXY2 float64
	S    float64
}

// CIP evaluates X, Y and s for the IAU 2006/2000A model. The expansions are
// read-only after construction, so a CIP may be shared between goroutines.
type CIP struct {
	X, Y, SXY2 *Expansion
}

// NewCIP builds a CIP model from its three expansions.
func NewCIP(x, y, sxy2 *Expansion) (*CIP, error) {
	if x == nil || y == nil || sxy2 == nil {
		return nil, errors.New("new cip: nil expansion")
	}
	return &CIP{X: x, Y: y, SXY2: sxy2}, nil
}

// Secular returns a CIP model without the X and Y periodic terms. It
// reproduces bias and precession only and is off by up to about 20
// arcseconds; it is never selected implicitly.
func Secular() *CIP {
	return &CIP{X: SecularX(), Y: SecularY(), SXY2: SXY2()}
}

var loadDefault = sync.OnceValues(func() (*CIP, error) {
	sub, err := fs.Sub(embedded, "iers")
	if err != nil {
		return nil, err
	}
	if !HasTables(sub) {
		return nil, fmt.Errorf("default cip: %w", ErrNoTables)
	}
	return LoadCIPFS(sub)
})

// Default returns the full IAU 2006/2000A model built from the tables
// compiled into the package. The model is parsed once and shared.
func Default() (*CIP, error) {
	return loadDefault()
}

// LoadCIP reads the X and Y tables from dir. The s+XY/2 table is read when
// present and otherwise taken from the built-in copy.
func LoadCIP(dir string) (*CIP, error) {
	return LoadCIPFS(os.DirFS(dir))
}

// LoadCIPFS is LoadCIP over a file system.
func LoadCIPFS(fsys fs.FS) (*CIP, error) {
	x, err := LoadTable(fsys, FileX, "X", PolynomialX)
	if err != nil {
		return nil, fmt.Errorf("load cip: %w", err)
	}
	y, err := LoadTable(fsys, FileY, "Y", PolynomialY)
	if err != nil {
		return nil, fmt.Errorf("load cip: %w", err)
	}

	sxy2, err := LoadTable(fsys, FileSXY2, "s+XY/2", PolynomialSXY2)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		sxy2 = SXY2()
	case err != nil:
		return nil, fmt.Errorf("load cip: %w", err)
	}
	return &CIP{X: x, Y: y, SXY2: sxy2}, nil
}

// HasTables reports whether fsys holds the X and Y series tables.
func HasTables(fsys fs.FS) bool {
	for _, name := range []string{FileX, FileY} {
		if _, err := fs.Stat(fsys, name); err != nil {
			return false
		}
	}
	return true
}

// Evaluate computes the CIP coordinates at t Julian centuries of TT.
func (c *CIP) Evaluate(t float64) Coordinates {
	args := FundamentalArguments(t)
	x := c.X.ComputeArgs(t, &args)
	y := c.Y.ComputeArgs(t, &args)
	sxy2 := c.SXY2.ComputeArgs(t, &args)
	return Coordinates{X: x, Y: y, SXY2: sxy2, S: S(sxy2, x, y)}
}

// S returns the CIO locator from s+XY/2 and the CIP coordinates.
func S(sxy2, x, y float64) float64 {
	return sxy2 - x*y/2
}
