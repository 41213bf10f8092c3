package astro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the scalar product.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Matrix is a row-major 3x3 rotation matrix, indexed [row][col]. It acts on
// column vectors: v' = M·v.
type Matrix [3][3]float64

// Identity returns the 3x3 identity matrix.
func Identity() Matrix {
	return Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul returns m·n. Each element is summed left to right.
func (m Matrix) Mul(n Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var w float64
			for k := 0; k < 3; k++ {
				w += m[i][k] * n[k][j]
			}
			r[i][j] = w
		}
	}
	return r
}

// Transpose returns mᵀ, which is the inverse of a rotation.
func (m Matrix) Transpose() Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// MulVec returns m·v.
func (m Matrix) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// MaxAbsDiff returns the largest element-wise absolute difference.
func (m Matrix) MaxAbsDiff(n Matrix) float64 {
	var worst float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if d := math.Abs(m[i][j] - n[i][j]); d > worst {
				worst = d
			}
		}
	}
	return worst
}

// OrthonormalityError returns the largest element of |mᵀm - I|.
func (m Matrix) OrthonormalityError() float64 {
	return m.Transpose().Mul(m).MaxAbsDiff(Identity())
}

// Dense copies m into a gonum matrix.
func (m Matrix) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2],
	})
}

// FromDense copies a 3x3 gonum matrix.
func FromDense(d mat.Matrix) (Matrix, error) {
	r, c := d.Dims()
	if r != 3 || c != 3 {
		return Matrix{}, fmt.Errorf("from dense: %dx%d matrix, want 3x3", r, c)
	}
	var m Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m, nil
}

// Pretty renders the matrix with gonum's formatter, one row per line, each
// line starting with prefix.
func (m Matrix) Pretty(prefix string) string {
	return fmt.Sprintf("%s%.15f", prefix, mat.Formatted(m.Dense(), mat.Prefix(prefix), mat.Squeeze()))
}
