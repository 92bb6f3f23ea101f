package common

import (
	"github.com/chewxy/math32"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// NextPowerOf2 returns the smallest power of two that is >= n.
// Values <= 1 return 1.
//
// Parameters:
//   - n: the natural size
//
// Returns:
//   - int: the rounded-up size
func NextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Lerp interpolates from a to b by t, with t clamped to [0, 1].
// Lerp(a, a, t) returns a exactly for every t.
//
// Parameters:
//   - a: the start value
//   - b: the end value
//   - t: the interpolation amount
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	t = math32.Max(math32.Min(t, 1), 0)
	return a + (b-a)*t
}

// Mod returns x modulo y with the sign of y, matching the GLSL mod() builtin.
func Mod(x, y float32) float32 {
	if y == 0 {
		return x
	}
	return x - y*math32.Floor(x/y)
}

// Fract returns the fractional part of x (x - floor(x)).
func Fract(x float32) float32 {
	return x - math32.Floor(x)
}
