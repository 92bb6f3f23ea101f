package common

import (
	"github.com/chewxy/math32"
)

// Add3 returns a + b.
func Add3(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub3 returns a - b.
func Sub3(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale3 returns v * s.
func Scale3(v Vec3, s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot3 returns the dot product of a and b.
func Dot3(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns a × b.
func Cross3(a, b Vec3) Vec3 {
	return Vec3{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

// LengthSq3 returns the squared length of v.
func LengthSq3(v Vec3) float32 {
	return Dot3(v, v)
}

// Length3 returns the length of v.
func Length3(v Vec3) float32 {
	return math32.Sqrt(LengthSq3(v))
}

// Normalize3 returns v scaled to unit length and reports whether v had a usable length.
// Vectors shorter than eps are returned unchanged with ok == false so callers can skip the term
// instead of dividing by zero.
//
// Parameters:
//   - v: the vector to normalize
//   - eps: the smallest length treated as non-zero
//
// Returns:
//   - Vec3: the unit vector, or v when it is degenerate
//   - bool: false when |v| < eps
func Normalize3(v Vec3, eps float32) (Vec3, bool) {
	l := Length3(v)
	if !(l >= eps) || l == 0 {
		return v, false
	}
	return Scale3(v, 1/l), true
}

// XYZ returns the first three components of v.
func XYZ(v Vec4) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// WithW packs a Vec3 and a w component into a Vec4.
func WithW(v Vec3, w float32) Vec4 {
	return Vec4{v[0], v[1], v[2], w}
}

// Finite4 reports whether every component of v is a finite number.
func Finite4(v Vec4) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Mat3Identity returns the 3x3 identity matrix.
func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// MulMat3 multiplies two column-major 3x3 matrices (out = a * b).
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - Mat3: the product
func MulMat3(a, b Mat3) Mat3 {
	var out Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			var sum float32
			for k := 0; k < 3; k++ {
				sum += a[k*3+row] * b[col*3+k]
			}
			out[col*3+row] = sum
		}
	}
	return out
}

// MulMat3Vec3 multiplies a column-major 3x3 matrix with a column vector.
func MulMat3Vec3(m Mat3, v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[3]*v[1] + m[6]*v[2],
		m[1]*v[0] + m[4]*v[1] + m[7]*v[2],
		m[2]*v[0] + m[5]*v[1] + m[8]*v[2],
	}
}

// RotationY returns the column-major rotation matrix around the Y axis.
func RotationY(angle float32) Mat3 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	return Mat3{c, 0, -s, 0, 1, 0, s, 0, c}
}
